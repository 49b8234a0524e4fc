package logs_core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OpenSearchRepository talks to OpenSearch over plain HTTP. Daily indices,
// routed by tenant so tenant-scoped queries stay on one shard group.
type OpenSearchRepository struct {
	client       *http.Client
	baseURL      string
	indexPattern string
	indexPrefix  string
	timeout      time.Duration
	logger       *slog.Logger
}

type openSearchSearchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64  `json:"value"`
			Rel   string `json:"relation"`
		} `json:"total"`
		Hits []struct {
			Index  string         `json:"_index"`
			ID     string         `json:"_id"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type openSearchBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			Status int `json:"status"`
			Error  any `json:"error,omitempty"`
		} `json:"index,omitempty"`
	} `json:"items"`
}

func (r *OpenSearchRepository) Store(entry *LogEntry, opts *StoreOptions) (string, error) {
	indexName := r.indexFor(entry.Timestamp)

	document := r.buildDocument(entry, opts)

	documentBytes, err := json.Marshal(document)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/_doc/%s?routing=%s",
		r.baseURL, indexName, entry.ID.String(), entry.TenantID)

	request, err := http.NewRequest("PUT", endpoint, bytes.NewReader(documentBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create index request: %w", err)
	}

	request.Header.Set("Content-Type", "application/json")

	response, err := r.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("failed to store log entry: %w", err)
	}

	defer r.closeBody(response.Body)

	if response.StatusCode >= 300 {
		body, _ := io.ReadAll(response.Body)
		return "", fmt.Errorf("log store returned status %d: %s", response.StatusCode, string(body))
	}

	return indexName + "/" + entry.ID.String(), nil
}

func (r *OpenSearchRepository) StoreBatch(entries []*LogEntry) ([]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	var bulkRequestBuilder strings.Builder
	locations := make([]string, 0, len(entries))

	for _, entry := range entries {
		indexName := r.indexFor(entry.Timestamp)

		metadata := map[string]any{
			"index": map[string]any{
				"_index":  indexName,
				"_id":     entry.ID.String(),
				"routing": entry.TenantID,
			},
		}

		metadataBytes, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}

		bulkRequestBuilder.Write(metadataBytes)
		bulkRequestBuilder.WriteByte('\n')

		documentBytes, err := json.Marshal(r.buildDocument(entry, nil))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document: %w", err)
		}

		bulkRequestBuilder.Write(documentBytes)
		bulkRequestBuilder.WriteByte('\n')

		locations = append(locations, indexName+"/"+entry.ID.String())
	}

	bulkEndpoint := r.baseURL + "/_bulk"
	bulkRequest, err := http.NewRequest("POST", bulkEndpoint, strings.NewReader(bulkRequestBuilder.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to create bulk request: %w", err)
	}

	bulkRequest.Header.Set("Content-Type", "application/x-ndjson")

	bulkResponse, err := r.client.Do(bulkRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to send logs to OpenSearch: %w", err)
	}

	defer r.closeBody(bulkResponse.Body)

	responseBody, err := io.ReadAll(bulkResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read bulk response: %w", err)
	}

	var parsed openSearchBulkResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse bulk response: %w", err)
	}

	if parsed.Errors {
		failed := 0
		for _, item := range parsed.Items {
			if item.Index.Status >= 300 {
				failed++
			}
		}
		return nil, fmt.Errorf("bulk indexing reported %d failed items", failed)
	}

	return locations, nil
}

func (r *OpenSearchRepository) Query(params *QueryParams) (*QueryResult, error) {
	searchBody := r.buildSearchBody(params)

	bodyBytes, err := json.Marshal(searchBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/_search?routing=%s", r.baseURL, r.indexPattern, params.TenantID)

	request, err := http.NewRequest("POST", endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	request.Header.Set("Content-Type", "application/json")

	response, err := r.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to query log store: %w", err)
	}

	defer r.closeBody(response.Body)

	if response.StatusCode >= 300 {
		body, _ := io.ReadAll(response.Body)
		return nil, fmt.Errorf("log store search returned status %d: %s", response.StatusCode, string(body))
	}

	var parsed openSearchSearchResponse
	if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	logs := make([]*LogEntry, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		entry, err := r.documentToEntry(hit.Source)
		if err != nil {
			r.logger.Warn("Skipping unparseable log document",
				slog.String("documentId", hit.ID),
				slog.String("error", err.Error()))
			continue
		}
		logs = append(logs, entry)
	}

	return &QueryResult{
		Logs:  logs,
		Total: parsed.Hits.Total.Value,
	}, nil
}

func (r *OpenSearchRepository) DeleteOld(tenantID string, olderThan time.Time) error {
	queryBody := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []map[string]any{
					{"term": map[string]any{"tenant_id": tenantID}},
					{"range": map[string]any{
						"@timestamp": map[string]any{
							"lt": olderThan.UTC().Format(time.RFC3339Nano),
						},
					}},
				},
			},
		},
	}

	bodyBytes, err := json.Marshal(queryBody)
	if err != nil {
		return fmt.Errorf("failed to marshal delete query: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/_delete_by_query?routing=%s&conflicts=proceed",
		r.baseURL, r.indexPattern, tenantID)

	request, err := http.NewRequest("POST", endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	request.Header.Set("Content-Type", "application/json")

	response, err := r.client.Do(request)
	if err != nil {
		return fmt.Errorf("failed to delete old logs: %w", err)
	}

	defer r.closeBody(response.Body)

	if response.StatusCode >= 300 {
		body, _ := io.ReadAll(response.Body)
		return fmt.Errorf("delete by query returned status %d: %s", response.StatusCode, string(body))
	}

	return nil
}

func (r *OpenSearchRepository) Ping() error {
	request, err := http.NewRequest("GET", r.baseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}

	response, err := r.client.Do(request)
	if err != nil {
		return fmt.Errorf("log store is unreachable: %w", err)
	}

	defer r.closeBody(response.Body)

	if response.StatusCode >= 300 {
		return fmt.Errorf("log store ping returned status %d", response.StatusCode)
	}

	return nil
}

func (r *OpenSearchRepository) buildDocument(entry *LogEntry, opts *StoreOptions) map[string]any {
	document := map[string]any{
		"@timestamp":  entry.Timestamp.UTC().Format(time.RFC3339Nano),
		"tenant_id":   entry.TenantID,
		"id":          entry.ID.String(),
		"level":       string(entry.Level),
		"source":      string(entry.Source),
		"message":     entry.Message,
		"essential":   entry.Essential,
		"storage_type": string(entry.StorageType),
	}

	if entry.UserID != "" {
		document["user_id"] = entry.UserID
	}
	if entry.SessionID != "" {
		document["session_id"] = entry.SessionID
	}
	if entry.CorrelationID != "" {
		document["correlation_id"] = entry.CorrelationID
	}
	if entry.ClientIP != "" {
		document["client_ip"] = entry.ClientIP
	}
	if len(entry.Meta) > 0 {
		document["meta"] = entry.Meta
	}

	if opts != nil {
		document["storage_type"] = string(opts.StorageType)
		document["essential"] = opts.Essential
		document["module_enabled"] = opts.ModuleEnabled
	}

	return document
}

func (r *OpenSearchRepository) buildSearchBody(params *QueryParams) map[string]any {
	filters := []map[string]any{
		{"term": map[string]any{"tenant_id": params.TenantID}},
	}

	if len(params.Levels) > 0 {
		levels := make([]string, 0, len(params.Levels))
		for _, level := range params.Levels {
			levels = append(levels, string(level))
		}
		filters = append(filters, map[string]any{"terms": map[string]any{"level": levels}})
	}

	if len(params.StorageTypes) > 0 {
		types := make([]string, 0, len(params.StorageTypes))
		for _, storageType := range params.StorageTypes {
			types = append(types, string(storageType))
		}
		typesFilter := map[string]any{"terms": map[string]any{"storage_type": types}}
		if params.IncludeEssential {
			filters = append(filters, map[string]any{
				"bool": map[string]any{
					"should": []map[string]any{
						typesFilter,
						{"term": map[string]any{"essential": true}},
					},
					"minimum_should_match": 1,
				},
			})
		} else {
			filters = append(filters, typesFilter)
		}
	}

	if params.EssentialOnly {
		filters = append(filters, map[string]any{"term": map[string]any{"essential": true}})
	}

	if params.UserID != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"user_id": params.UserID}})
	}

	if params.CorrelationID != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"correlation_id": params.CorrelationID}})
	}

	if params.MessageContains != "" {
		filters = append(filters, map[string]any{
			"match_phrase": map[string]any{"message": params.MessageContains},
		})
	}

	if params.From != nil || params.To != nil {
		timestampRange := map[string]any{}
		if params.From != nil {
			timestampRange["gte"] = params.From.UTC().Format(time.RFC3339Nano)
		}
		if params.To != nil {
			timestampRange["lte"] = params.To.UTC().Format(time.RFC3339Nano)
		}
		filters = append(filters, map[string]any{"range": map[string]any{"@timestamp": timestampRange}})
	}

	sortOrder := "asc"
	if params.SortDescending {
		sortOrder = "desc"
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"filter": filters},
		},
		"sort":             []map[string]any{{"@timestamp": map[string]any{"order": sortOrder}}},
		"from":             max(params.Offset, 0),
		"size":             limit,
		"track_total_hits": true,
	}
}

func (r *OpenSearchRepository) documentToEntry(source map[string]any) (*LogEntry, error) {
	id, err := uuid.Parse(asString(source["id"]))
	if err != nil {
		return nil, fmt.Errorf("invalid document id: %w", err)
	}

	timestamp, err := time.Parse(time.RFC3339Nano, asString(source["@timestamp"]))
	if err != nil {
		return nil, fmt.Errorf("invalid document timestamp: %w", err)
	}

	entry := &LogEntry{
		ID:            id,
		Timestamp:     timestamp,
		Level:         LogLevel(asString(source["level"])),
		Message:       asString(source["message"]),
		Source:        LogSource(asString(source["source"])),
		TenantID:      asString(source["tenant_id"]),
		UserID:        asString(source["user_id"]),
		SessionID:     asString(source["session_id"]),
		CorrelationID: asString(source["correlation_id"]),
		StorageType:   StorageType(asString(source["storage_type"])),
		ClientIP:      asString(source["client_ip"]),
	}

	if essential, ok := source["essential"].(bool); ok {
		entry.Essential = essential
	}

	if meta, ok := source["meta"].(map[string]any); ok {
		entry.Meta = meta
	}

	return entry, nil
}

func (r *OpenSearchRepository) indexFor(timestamp time.Time) string {
	return r.indexPrefix + timestamp.UTC().Format("2006.01.02")
}

func (r *OpenSearchRepository) closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		r.logger.Error("failed to close response body", "error", err)
	}
}

func asString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}
