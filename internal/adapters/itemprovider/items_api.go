package itemprovider

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Amund211/fetchonce/internal/config"
	"github.com/Amund211/fetchonce/internal/constants"
	"github.com/Amund211/fetchonce/internal/domain"
	"github.com/Amund211/fetchonce/internal/logging"
	"github.com/Amund211/fetchonce/internal/reporting"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type itemsAPIMetricsCollection struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
}

func setupItemsAPIMetrics(meter metric.Meter) (itemsAPIMetricsCollection, error) {
	requestCount, err := meter.Int64Counter(
		"itemprovider/items_api/request_count",
		metric.WithDescription("Total number of requests sent to the items API"),
	)
	if err != nil {
		return itemsAPIMetricsCollection{}, fmt.Errorf("failed to create request count metric: %w", err)
	}

	requestDuration, err := meter.Float64Histogram(
		"itemprovider/items_api/request_duration_seconds",
		metric.WithDescription("Time spent waiting for the items API"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return itemsAPIMetricsCollection{}, fmt.Errorf("failed to create request duration metric: %w", err)
	}

	return itemsAPIMetricsCollection{
		requestCount:    requestCount,
		requestDuration: requestDuration,
	}, nil
}

type itemsAPI struct {
	httpClient HttpClient
	baseURL    string

	metrics itemsAPIMetricsCollection
	tracer  trace.Tracer
}

func NewItemsAPI(httpClient HttpClient, baseURL string) (*itemsAPI, error) {
	const name = "fetchonce/itemprovider/items_api"

	metrics, err := setupItemsAPIMetrics(otel.Meter(name))
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &itemsAPI{
		httpClient: httpClient,
		baseURL:    baseURL,

		metrics: metrics,
		tracer:  otel.Tracer(name),
	}, nil
}

func (a *itemsAPI) GetItem(ctx context.Context, key string) (string, error) {
	ctx, span := a.tracer.Start(ctx, "ItemsAPI.GetItem")
	defer span.End()

	logger := logging.FromContext(ctx)
	itemURL := a.baseURL + url.PathEscape(key)

	req, err := http.NewRequestWithContext(ctx, "GET", itemURL, nil)
	if err != nil {
		err := fmt.Errorf("failed to create request: %w", err)
		reporting.Report(ctx, err)
		return "", err
	}

	req.Header.Set("User-Agent", constants.USER_AGENT)
	// NOTE: The items API expects the key itself as the credential
	req.Header.Set("Authorization", base64.StdEncoding.EncodeToString([]byte(key)))

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.recordRequest(ctx, "error", start)
		err := fmt.Errorf("failed to send request: %w", err)
		reporting.Report(ctx, err)
		return "", err
	}

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		a.recordRequest(ctx, strconv.Itoa(resp.StatusCode), start)
		err := fmt.Errorf("failed to read response body: %w", err)
		reporting.Report(ctx, err)
		return "", err
	}

	a.recordRequest(ctx, strconv.Itoa(resp.StatusCode), start)
	logger.DebugContext(ctx, "items API request completed", "status", resp.StatusCode, "duration", time.Since(start).String())

	value, err := itemFromResponse(resp.StatusCode, data)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			// Pass through error but don't report
			return "", err
		}

		err := fmt.Errorf("failed to get item from items API response: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"data":   string(data),
			"status": strconv.Itoa(resp.StatusCode),
		})
		return "", err
	}

	return value, nil
}

func (a *itemsAPI) recordRequest(ctx context.Context, statusCode string, start time.Time) {
	attributesOption := metric.WithAttributes(attribute.String("status_code", statusCode))
	a.metrics.requestCount.Add(ctx, 1, attributesOption)
	a.metrics.requestDuration.Record(ctx, time.Since(start).Seconds(), attributesOption)
}

func itemFromResponse(statusCode int, data []byte) (string, error) {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return "", fmt.Errorf("%w: items API returned status code %d", domain.ErrTemporarilyUnavailable, statusCode)
	}

	switch statusCode {
	case http.StatusNotFound,
		http.StatusNoContent:
		return "", domain.ErrItemNotFound
	}

	if statusCode != http.StatusOK {
		return "", fmt.Errorf("items API returned unexpected status code %d", statusCode)
	}

	return strings.TrimRight(string(data), "\r\n"), nil
}

type mockedItemsAPI struct{}

func (m mockedItemsAPI) GetItem(ctx context.Context, key string) (string, error) {
	return key + "-VALUE", nil
}

func NewMockedItemsAPI() ItemProvider {
	return mockedItemsAPI{}
}

func NewItemsAPIOrMock(config config.Config, httpClient HttpClient) (ItemProvider, error) {
	if config.MockItems() {
		if !config.IsDevelopment() {
			return nil, fmt.Errorf("Mocked items API requested in non-development environment")
		}
		return NewMockedItemsAPI(), nil
	}
	return NewItemsAPI(httpClient, config.ItemsBaseURL())
}
