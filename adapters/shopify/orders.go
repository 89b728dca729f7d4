package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"postlift/domain/campaign"
	"postlift/domain/core"
	"postlift/internal/config"
	"postlift/internal/errors"
	"postlift/ports"
)

// OrderClient fetches orders from the Shopify Admin REST API and normalizes
// them into domain orders. All price strings degrade to 0 when malformed;
// a broken order must never abort an attribution run.
type OrderClient struct {
	shopDomain  string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
	baseURL     string // overridable for tests
}

// NewOrderClient creates a Shopify order source
func NewOrderClient(cfg config.ShopifyConfig) ports.OrderSource {
	return &OrderClient{
		shopDomain:  cfg.ShopDomain,
		accessToken: cfg.AccessToken,
		apiVersion:  cfg.APIVersion,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     fmt.Sprintf("https://%s", cfg.ShopDomain),
	}
}

// wire types mirror the Shopify Admin REST shape
type ordersEnvelope struct {
	Orders []wireOrder `json:"orders"`
}

type wireOrder struct {
	ID         int64          `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	TotalPrice string         `json:"total_price"`
	Email      string         `json:"email"`
	Customer   *wireCustomer  `json:"customer"`
	LineItems  []wireLineItem `json:"line_items"`
}

type wireCustomer struct {
	Email string `json:"email"`
}

type wireLineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// FetchOrders pages through /orders.json from the given instant, oldest
// first
func (c *OrderClient) FetchOrders(ctx context.Context, since time.Time) ([]campaign.Order, error) {
	var all []campaign.Order

	params := url.Values{}
	params.Set("status", "any")
	params.Set("limit", "250")
	params.Set("order", "created_at asc")
	params.Set("created_at_min", since.Format(time.RFC3339))

	endpoint := fmt.Sprintf("%s/admin/api/%s/orders.json?%s", c.baseURL, c.apiVersion, params.Encode())
	for endpoint != "" {
		envelope, next, err := c.fetchPage(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		for _, wo := range envelope.Orders {
			all = append(all, normalizeOrder(wo))
		}
		endpoint = next
	}
	return all, nil
}

// fetchPage executes one request and extracts the RFC 5988 next-page link
func (c *OrderClient) fetchPage(ctx context.Context, endpoint string) (*ordersEnvelope, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", errors.WithCode(errors.CodeShopifyError, err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", errors.WithCode(errors.CodeShopifyError,
			fmt.Errorf("%w: request to %s: %v", core.ErrSourceUnavailable, endpoint, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", errors.WithCode(errors.CodeShopifyError,
			fmt.Errorf("%w: shopify returned %d: %s", core.ErrSourceUnavailable, resp.StatusCode, string(body)))
	}

	var envelope ordersEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, "", errors.WithCode(errors.CodeShopifyError,
			fmt.Errorf("%w: decoding orders payload: %v", core.ErrMalformedPayload, err))
	}
	return &envelope, nextPageLink(resp.Header.Get("Link")), nil
}

// nextPageLink extracts the rel="next" target from a Link header, or ""
func nextPageLink(header string) string {
	for _, link := range strings.Split(header, ",") {
		segments := strings.Split(link, ";")
		if len(segments) < 2 {
			continue
		}
		target := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, attr := range segments[1:] {
			if strings.TrimSpace(attr) == `rel="next"` {
				return strings.Trim(target, "<>")
			}
		}
	}
	return ""
}

// normalizeOrder maps one wire order onto the domain type
func normalizeOrder(wo wireOrder) campaign.Order {
	email := wo.Email
	if email == "" && wo.Customer != nil {
		email = wo.Customer.Email
	}

	items := make([]campaign.LineItem, 0, len(wo.LineItems))
	for _, li := range wo.LineItems {
		items = append(items, campaign.LineItem{
			Title:    li.Title,
			Quantity: li.Quantity,
			Price:    core.ParsePrice(li.Price),
		})
	}

	return campaign.Order{
		ID:            core.OrderID(strconv.FormatInt(wo.ID, 10)),
		CreatedAt:     wo.CreatedAt,
		TotalPrice:    core.ParsePrice(wo.TotalPrice),
		CustomerEmail: email,
		LineItems:     items,
	}
}
