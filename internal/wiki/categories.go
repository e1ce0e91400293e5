package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/nao1215/wikicorpus/internal/model"
)

// Namespace numbers used to classify category members.
const (
	NamespaceMain     = 0
	NamespaceCategory = 14
)

// categoryMembersResponse is the formatversion=2 listing document.
type categoryMembersResponse struct {
	Continue map[string]string `json:"continue"`
	Query    struct {
		CategoryMembers []struct {
			NS    int    `json:"ns"`
			Title string `json:"title"`
		} `json:"categorymembers"`
	} `json:"query"`
	Error *APIError `json:"error"`
}

// CategoryMembers returns every member of the category in API order.
// Members outside the main and category namespaces are returned with
// model.KindOther.
func (c *Client) CategoryMembers(ctx context.Context, category string) ([]model.Member, error) {
	params := url.Values{
		"action":        {"query"},
		"list":          {"categorymembers"},
		"cmtitle":       {category},
		"cmprop":        {"title"},
		"cmlimit":       {"max"},
		"format":        {"json"},
		"formatversion": {"2"},
	}

	var members []model.Member
	for {
		body, err := c.get(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list %q: %w", category, err)
		}

		var resp categoryMembersResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: listing %q: %w", ErrUnexpectedResponse, category, err)
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("failed to list %q: %w", category, resp.Error)
		}

		for _, m := range resp.Query.CategoryMembers {
			members = append(members, model.Member{
				Title: m.Title,
				Kind:  kindOf(m.NS),
			})
		}

		if len(resp.Continue) == 0 {
			return members, nil
		}
		for k, v := range resp.Continue {
			params.Set(k, v)
		}
	}
}

// kindOf maps a namespace number to a member kind.
func kindOf(ns int) model.MemberKind {
	switch ns {
	case NamespaceMain:
		return model.KindArticle
	case NamespaceCategory:
		return model.KindCategory
	default:
		return model.KindOther
	}
}
