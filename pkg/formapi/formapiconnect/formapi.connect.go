// Package formapiconnect wires the form runtime API to Connect handlers and
// clients.
package formapiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/newmiodek/rejestr-skladek/pkg/formapi"
)

// FormServiceName is the fully-qualified name of the FormService service.
const FormServiceName = "rejestr.v1.FormService"

// Procedure paths of the FormService RPCs.
const (
	FormServiceOpenFormProcedure  = "/rejestr.v1.FormService/OpenForm"
	FormServiceClickProcedure     = "/rejestr.v1.FormService/Click"
	FormServiceGetFormProcedure   = "/rejestr.v1.FormService/GetForm"
	FormServiceCloseFormProcedure = "/rejestr.v1.FormService/CloseForm"
)

// FormServiceHandler is implemented by the form runtime.
type FormServiceHandler interface {
	OpenForm(context.Context, *connect.Request[formapi.OpenFormRequest]) (*connect.Response[formapi.OpenFormResponse], error)
	Click(context.Context, *connect.Request[formapi.ClickRequest]) (*connect.Response[formapi.ClickResponse], error)
	GetForm(context.Context, *connect.Request[formapi.GetFormRequest]) (*connect.Response[formapi.GetFormResponse], error)
	CloseForm(context.Context, *connect.Request[formapi.CloseFormRequest]) (*connect.Response[formapi.CloseFormResponse], error)
}

// NewFormServiceHandler builds an HTTP handler for the service. It returns
// the path on which to mount the handler and the handler itself.
func NewFormServiceHandler(svc FormServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(handlerCodecs(), opts...)

	openForm := connect.NewUnaryHandler(FormServiceOpenFormProcedure, svc.OpenForm, opts...)
	click := connect.NewUnaryHandler(FormServiceClickProcedure, svc.Click, opts...)
	getForm := connect.NewUnaryHandler(FormServiceGetFormProcedure, svc.GetForm, opts...)
	closeForm := connect.NewUnaryHandler(FormServiceCloseFormProcedure, svc.CloseForm, opts...)

	return "/" + FormServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case FormServiceOpenFormProcedure:
			openForm.ServeHTTP(w, r)
		case FormServiceClickProcedure:
			click.ServeHTTP(w, r)
		case FormServiceGetFormProcedure:
			getForm.ServeHTTP(w, r)
		case FormServiceCloseFormProcedure:
			closeForm.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// FormServiceClient is a client for the FormService.
type FormServiceClient interface {
	OpenForm(context.Context, *connect.Request[formapi.OpenFormRequest]) (*connect.Response[formapi.OpenFormResponse], error)
	Click(context.Context, *connect.Request[formapi.ClickRequest]) (*connect.Response[formapi.ClickResponse], error)
	GetForm(context.Context, *connect.Request[formapi.GetFormRequest]) (*connect.Response[formapi.GetFormResponse], error)
	CloseForm(context.Context, *connect.Request[formapi.CloseFormRequest]) (*connect.Response[formapi.CloseFormResponse], error)
}

// NewFormServiceClient constructs a client for the FormService at baseURL
// (e.g. http://localhost:8080).
func NewFormServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) FormServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{clientCodec()}, opts...)
	return &formServiceClient{
		openForm:  connect.NewClient[formapi.OpenFormRequest, formapi.OpenFormResponse](httpClient, baseURL+FormServiceOpenFormProcedure, opts...),
		click:     connect.NewClient[formapi.ClickRequest, formapi.ClickResponse](httpClient, baseURL+FormServiceClickProcedure, opts...),
		getForm:   connect.NewClient[formapi.GetFormRequest, formapi.GetFormResponse](httpClient, baseURL+FormServiceGetFormProcedure, opts...),
		closeForm: connect.NewClient[formapi.CloseFormRequest, formapi.CloseFormResponse](httpClient, baseURL+FormServiceCloseFormProcedure, opts...),
	}
}

type formServiceClient struct {
	openForm  *connect.Client[formapi.OpenFormRequest, formapi.OpenFormResponse]
	click     *connect.Client[formapi.ClickRequest, formapi.ClickResponse]
	getForm   *connect.Client[formapi.GetFormRequest, formapi.GetFormResponse]
	closeForm *connect.Client[formapi.CloseFormRequest, formapi.CloseFormResponse]
}

func (c *formServiceClient) OpenForm(ctx context.Context, req *connect.Request[formapi.OpenFormRequest]) (*connect.Response[formapi.OpenFormResponse], error) {
	return c.openForm.CallUnary(ctx, req)
}

func (c *formServiceClient) Click(ctx context.Context, req *connect.Request[formapi.ClickRequest]) (*connect.Response[formapi.ClickResponse], error) {
	return c.click.CallUnary(ctx, req)
}

func (c *formServiceClient) GetForm(ctx context.Context, req *connect.Request[formapi.GetFormRequest]) (*connect.Response[formapi.GetFormResponse], error) {
	return c.getForm.CallUnary(ctx, req)
}

func (c *formServiceClient) CloseForm(ctx context.Context, req *connect.Request[formapi.CloseFormRequest]) (*connect.Response[formapi.CloseFormResponse], error) {
	return c.closeForm.CallUnary(ctx, req)
}
