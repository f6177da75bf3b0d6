// Package chat forwards free-text questions to an OpenAI-compatible
// natural-language-to-SQL service and executes the generated query against
// the analytics store.
package chat

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// maxResultRows bounds how many rows a generated query may return to the
// caller.
const maxResultRows = 100

// schemaPrompt describes the relational schema to the model.
const schemaPrompt = `Database schema (SQLite):
- vendors: id, name, email, phone, address, tax_id, created_at
- customers: id, name, email, phone, address, created_at
- invoices: id, invoice_number, vendor_id, customer_id, issue_date, due_date, total_amount, subtotal_amount, tax_amount, currency, status, category, description, created_at
- line_items: id, invoice_id, description, quantity, unit_price, total_price, category, created_at
- payments: id, invoice_id, amount, payment_date, method, reference, status, created_at

Invoice status values: DRAFT, PENDING, SENT, PAID, OVERDUE, CANCELLED`

// Config holds the chat service configuration.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// Answer is the response to one chat-with-data question.
type Answer struct {
	Question    string                   `json:"question"`
	SQL         string                   `json:"sql,omitempty"`
	Results     []map[string]interface{} `json:"results"`
	Explanation string                   `json:"explanation"`
	Degraded    bool                     `json:"degraded,omitempty"`
}

// Service answers free-text questions about the stored data. When no API
// key is configured or the model call fails, it degrades to a
// human-readable fallback instead of erroring.
type Service struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	db          *sql.DB
	logger      *zap.Logger
}

// NewService creates a chat service. An empty API key yields a service
// that always answers in degraded mode.
func NewService(cfg Config, db *sql.DB, logger *zap.Logger) *Service {
	var client *openai.Client
	if cfg.APIKey != "" {
		clientConfig := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
		client = openai.NewClientWithConfig(clientConfig)
	}

	return &Service{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		db:          db,
		logger:      logger,
	}
}

// Query generates SQL for the question, executes it, and returns the rows.
// Failures of the external service or of the generated query produce a
// degraded Answer, never an error: the dashboard treats this feature as
// best-effort.
func (s *Service) Query(ctx context.Context, question string) *Answer {
	if s.client == nil {
		return s.degraded(question, "The natural-language query service is not configured. Set a chat API key to enable this feature.")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	generated, err := s.generateSQL(ctx, question)
	if err != nil {
		s.logger.Warn("SQL generation failed", zap.String("question", question), zap.Error(err))
		return s.degraded(question, "The natural-language query service is currently unavailable. Please try again later.")
	}

	if err := validateReadOnly(generated); err != nil {
		s.logger.Warn("Rejected generated SQL",
			zap.String("sql", generated),
			zap.Error(err))
		return s.degraded(question, "The generated query was rejected: only read-only SELECT statements can be executed.")
	}

	results, err := s.execute(ctx, generated)
	if err != nil {
		s.logger.Warn("Generated SQL failed to execute",
			zap.String("sql", generated),
			zap.Error(err))
		return s.degraded(question, "The generated query could not be executed against the current data.")
	}

	return &Answer{
		Question:    question,
		SQL:         generated,
		Results:     results,
		Explanation: fmt.Sprintf("Generated SQL query to answer: %s", question),
	}
}

func (s *Service) degraded(question, explanation string) *Answer {
	return &Answer{
		Question:    question,
		Results:     []map[string]interface{}{},
		Explanation: explanation,
		Degraded:    true,
	}
}

// generateSQL asks the model for a single SQL statement answering the
// question.
func (s *Service) generateSQL(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(`Given this database schema:
%s

Generate a SQLite query for: %s

Return only the SQL query, no explanation.`, schemaPrompt, question)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	return stripFences(resp.Choices[0].Message.Content), nil
}

// stripFences removes markdown code fences the model tends to wrap SQL in.
func stripFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```sql", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// validateReadOnly accepts a single SELECT (or WITH ... SELECT) statement
// and rejects everything else.
func validateReadOnly(query string) error {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), ";"))
	if trimmed == "" {
		return fmt.Errorf("empty query")
	}
	if strings.Contains(trimmed, ";") {
		return fmt.Errorf("multiple statements are not allowed")
	}
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return fmt.Errorf("only SELECT statements are allowed")
	}
	return nil
}

// execute runs the query and converts rows to generic maps.
func (s *Service) execute(ctx context.Context, query string) ([]map[string]interface{}, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	results := []map[string]interface{}{}
	for rows.Next() {
		if len(results) >= maxResultRows {
			break
		}

		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			value := values[i]
			if b, ok := value.([]byte); ok {
				value = string(b)
			}
			row[column] = value
		}
		results = append(results, row)
	}

	return results, rows.Err()
}
