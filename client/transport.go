package client

import (
    "bytes"
    "context"
    "errors"
    "io/ioutil"
    "net/http"
    "strings"
    "time"
)

const DefaultClientTimeout = time.Second * 10

var EClientTimeout = errors.New("Client request timed out")

type ErrorStatusCode struct {
    StatusCode int
    Message string
}

func (errorStatus *ErrorStatusCode) Error() string {
    return errorStatus.Message
}

// Transport is the verb-level HTTP surface the API client talks through.
// Tests substitute their own implementation so no real manager needs to
// be listening.
type Transport interface {
    Get(ctx context.Context, url string) ([]byte, error)
    Post(ctx context.Context, url string, body []byte) ([]byte, error)
}

type HTTPTransport struct {
    httpClient *http.Client
}

// NewHTTPTransport returns a transport whose requests are individually
// bounded by timeout. The bound keeps one hung manager from stalling the
// whole lifecycle run; the caller's failover loop moves on to the next
// endpoint.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
    if timeout == 0 {
        timeout = DefaultClientTimeout
    }

    return &HTTPTransport{
        httpClient: &http.Client{
            Timeout: timeout,
        },
    }
}

func (transport *HTTPTransport) Get(ctx context.Context, url string) ([]byte, error) {
    return transport.sendRequest(ctx, "GET", url, nil)
}

func (transport *HTTPTransport) Post(ctx context.Context, url string, body []byte) ([]byte, error) {
    return transport.sendRequest(ctx, "POST", url, body)
}

func (transport *HTTPTransport) sendRequest(ctx context.Context, httpVerb string, endpointURL string, body []byte) ([]byte, error) {
    request, err := http.NewRequest(httpVerb, endpointURL, bytes.NewReader(body))

    if err != nil {
        return nil, err
    }

    request.Header.Set("Content-Type", "application/json")
    request = request.WithContext(ctx)

    resp, err := transport.httpClient.Do(request)

    if err != nil {
        if strings.Contains(err.Error(), "Timeout") {
            return nil, EClientTimeout
        }

        return nil, err
    }

    defer resp.Body.Close()

    if resp.StatusCode / 100 != 2 {
        errorMessage, err := ioutil.ReadAll(resp.Body)

        if err != nil {
            return nil, err
        }

        return nil, &ErrorStatusCode{ Message: string(errorMessage), StatusCode: resp.StatusCode }
    }

    responseBody, err := ioutil.ReadAll(resp.Body)

    if err != nil {
        return nil, err
    }

    return responseBody, nil
}
