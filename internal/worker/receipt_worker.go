package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: loads the settled transaction
// rows, renders a PDF and mails it to the customer through the SMTP circuit
// breaker. Retries with exponential backoff; exhausted jobs go to the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"branchpos/internal/infra"
	"branchpos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	TransactionIDs []string `json:"transaction_ids"`
	CustomerEmail  string   `json:"customer_email"`
	CustomerName   string   `json:"customer_name"`
}

type ReceiptWorker struct {
	txRepo         repository.TransactionRepository
	mailer         *infra.Mailer
	breaker        *infra.CircuitBreaker
	pdfStoragePath string
}

func NewReceiptWorker(
	txRepo repository.TransactionRepository,
	mailer *infra.Mailer,
	breaker *infra.CircuitBreaker,
	pdfStoragePath string,
) *ReceiptWorker {
	return &ReceiptWorker{
		txRepo:         txRepo,
		mailer:         mailer,
		breaker:        breaker,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles a single receipt job:
//  1. Parse ReceiptJobPayload from the job envelope
//  2. Fetch the settled transaction rows from DB
//  3. Render the PDF receipt
//  4. Send the email through the circuit breaker with backoff (max 3 retries)
//  5. On exhaustion, move the job to the DLQ
func (w *ReceiptWorker) Process(ctx context.Context, rdb *redis.Client, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}
	if payload.CustomerEmail == "" || len(payload.TransactionIDs) == 0 {
		log.Warn().Msg("receipt_worker: empty email or transaction list — skipping")
		return
	}

	ids := make([]uuid.UUID, 0, len(payload.TransactionIDs))
	for _, raw := range payload.TransactionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			log.Error().Str("transaction_id", raw).Msg("receipt_worker: invalid transaction_id")
			return
		}
		ids = append(ids, id)
	}

	lines, err := w.txRepo.FindByIDs(ctx, ids)
	if err != nil || len(lines) == 0 {
		log.Error().Err(err).Msg("receipt_worker: transactions not found")
		return
	}

	total := decimal.Zero
	names := make(map[string]string, len(lines))
	branchName := ""
	for _, line := range lines {
		total = total.Add(line.TotalAmount)
		if line.Product != nil {
			names[line.ProductID.String()] = line.Product.Name
		}
		if line.Branch != nil {
			branchName = line.Branch.Name
		}
	}

	data := &infra.ReceiptData{
		ReceiptID:     payload.TransactionIDs[0],
		BranchName:    branchName,
		CustomerName:  payload.CustomerName,
		PaymentMethod: lines[0].PaymentMethod,
		Lines:         lines,
		ProductNames:  names,
		Total:         total,
		SettledAt:     lines[0].TransactionDate,
	}

	pdfPath, err := infra.GenerateReceiptPDF(data, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Msg("receipt_worker: PDF generation failed")
		return
	}

	subject := "Your BranchPOS receipt"
	body := fmt.Sprintf("Thank you for your purchase, %s.\nTotal: $%s", payload.CustomerName, total.StringFixed(2))

	sendErr := withRetry(ctx, 3, func(attempt int) error {
		return w.breaker.Execute(func() error {
			return w.mailer.SendReceipt(payload.CustomerEmail, subject, body, pdfPath)
		})
	})
	if sendErr != nil {
		log.Error().Err(sendErr).Str("to", payload.CustomerEmail).Msg("receipt_worker: email failed after all retries")
		SendToDLQ(ctx, rdb, QueueReceipt, "receipt", raw, sendErr.Error(), 3)
		return
	}

	log.Info().Str("to", payload.CustomerEmail).Str("pdf", pdfPath).Msg("receipt_worker: receipt sent")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
