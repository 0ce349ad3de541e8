package main

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// newClient builds the REST client for the timeline service. An empty token
// leaves the Authorization header unset; read-only commands don't need one.
func newClient(baseURL, token string) *resty.Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	if token != "" {
		c.SetAuthToken(token)
	}
	return c
}

// check turns a non-2xx response into an error carrying the server's body.
func check(resp *resty.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), resp.Body())
	}
	return resp.Body(), nil
}
