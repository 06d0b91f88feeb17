package provider

import (
	"fmt"
	"net/http"

	"github.com/kr/pretty"
)

// webError describes a delivery the endpoint refused.
type webError struct {
	path           string
	endpoint       string
	status         int
	requestHeader  http.Header
	responseHeader http.Header
	body           string
}

func (err webError) Error() string {
	return fmt.Sprintf("unexpected status code %d from '%s'", err.status, err.endpoint)
}

// PrettyPrint dumps the exchange. Credentials sent to the endpoint are masked.
func (err webError) PrettyPrint() {
	header := err.requestHeader.Clone()
	for _, key := range []string{"Authorization", "Cookie", "Proxy-Authorization"} {
		if header.Get(key) != "" {
			header.Set(key, "<redacted>")
		}
	}

	pretty.Println(struct {
		Path           string
		Endpoint       string
		Status         int
		RequestHeader  http.Header
		ResponseHeader http.Header
		Body           string
	}{err.path, err.endpoint, err.status, header, err.responseHeader, err.body})
}
