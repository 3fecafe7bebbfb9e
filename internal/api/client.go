// Package api is the typed client for the vaccination record keeper. Each
// method covers one endpoint, re-attributes transport-level 404s to the
// entity the caller asked about, and logs at the boundary.
package api

import (
	"vaccard/internal/common/auth"
	"vaccard/internal/common/errors"
	commonhttp "vaccard/internal/common/http"
	"vaccard/internal/common/logger"
)

type Client struct {
	transport *commonhttp.Client
	tokens    auth.TokenProvider
	logger    logger.Logger
}

func NewClient(transport *commonhttp.Client, tokens auth.TokenProvider, log logger.Logger) *Client {
	return &Client{
		transport: transport,
		tokens:    tokens,
		logger:    log,
	}
}

// attributeNotFound rewrites the transport's anonymous 404 into the entity
// error for the endpoint that produced it. Other errors pass through.
func attributeNotFound(err error, wrap func(string) *errors.StandardError) error {
	if err == nil {
		return nil
	}
	std := errors.AsStandardError(err)
	if std.Code == errors.ErrCodeResourceNotFound {
		return wrap(std.Details)
	}
	return err
}
