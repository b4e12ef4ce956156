package api

import (
	"context"
	"net/url"
	"strings"

	"partrep/internal/domain"
)

// MemberMetrics fetches the registry coverage tables of a member
func (c *Client) MemberMetrics(ctx context.Context, memberID string) (*domain.RegistryMetrics, error) {
	return c.registryMetrics(ctx, "members", memberID)
}

// JournalMetrics fetches the registry coverage tables of a journal
func (c *Client) JournalMetrics(ctx context.Context, issn string) (*domain.RegistryMetrics, error) {
	return c.registryMetrics(ctx, "journals", issn)
}

func (c *Client) registryMetrics(ctx context.Context, collection, id string) (*domain.RegistryMetrics, error) {
	target := strings.TrimRight(c.RegistryURL, "/") + "/" + collection + "/" + url.PathEscape(id)
	body, err := c.get(ctx, collection, target, nil)
	if err != nil {
		return nil, err
	}
	metrics, err := parseRegistryMetrics(body)
	if err != nil {
		return nil, &domain.FetchError{Op: collection, URL: target, Err: err}
	}
	return metrics, nil
}
