package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	correlationHeader = "X-Correlation-Id"
	requestIDHeader   = "X-Request-Id"
)

// Handler serves API Gateway proxy events with the gateway's gin engine so the
// Lambda deployment exposes exactly the same routes as the HTTP server.
type Handler struct {
	proxy *ginadapter.GinLambda
}

func NewHandler(r *gin.Engine) (*Handler, error) {
	if r == nil {
		return nil, errors.New("handler: gin engine must not be nil")
	}
	return &Handler{proxy: ginadapter.New(r)}, nil
}

func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := lookupHeader(event, correlationHeader)
	if correlationID == "" {
		correlationID = newCorrelationID()
	}
	if lookupHeader(event, requestIDHeader) == "" {
		event = withHeader(event, requestIDHeader, correlationID)
	}

	resp, err := h.proxy.ProxyWithContext(ctx, event)
	if err != nil {
		slog.Error("proxy request failed", "correlation_id", correlationID, "err", err)
		resp = events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
			Body:       `{"error":"Internal server error"}`,
		}
	}
	return withCorrelationID(resp, correlationID), nil
}

// lookupHeader reads a header case-insensitively; API Gateway passes headers
// through with the client's casing.
func lookupHeader(event events.APIGatewayProxyRequest, name string) string {
	for k, v := range event.Headers {
		if strings.EqualFold(k, name) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	for k, vs := range event.MultiValueHeaders {
		if strings.EqualFold(k, name) && len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
	}
	return ""
}

// withHeader returns a copy of event carrying the header in both header maps;
// the proxy reads MultiValueHeaders when the event has them.
func withHeader(event events.APIGatewayProxyRequest, name, value string) events.APIGatewayProxyRequest {
	headers := make(map[string]string, len(event.Headers)+1)
	for k, v := range event.Headers {
		headers[k] = v
	}
	headers[name] = value
	event.Headers = headers

	if event.MultiValueHeaders != nil {
		multi := make(map[string][]string, len(event.MultiValueHeaders)+1)
		for k, vs := range event.MultiValueHeaders {
			multi[k] = vs
		}
		multi[name] = []string{value}
		event.MultiValueHeaders = multi
	}
	return event
}

func withCorrelationID(resp events.APIGatewayProxyResponse, correlationID string) events.APIGatewayProxyResponse {
	if resp.Headers == nil {
		resp.Headers = map[string]string{}
	}
	resp.Headers[correlationHeader] = correlationID
	if resp.MultiValueHeaders == nil {
		resp.MultiValueHeaders = map[string][]string{}
	}
	resp.MultiValueHeaders[correlationHeader] = []string{correlationID}
	return resp
}

var newCorrelationID = func() string {
	return uuid.NewString()
}
