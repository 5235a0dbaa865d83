package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fintech-kernel/acctd/internal/adapter/http/dto"
	"github.com/fintech-kernel/acctd/tests/testutil"
)

func receivableRequest(sourceID string, amount int64) dto.CreateSubledgerRequest {
	return dto.CreateSubledgerRequest{
		CounterpartyID: "cust-1",
		SourceType:     "SALE",
		SourceID:       sourceID,
		Amount:         decimal.NewFromInt(amount),
		IssueDate:      dto.Date{Time: mustDate("2025-06-01")},
		DueDate:        dto.Date{Time: mustDate("2025-07-01")},
	}
}

func TestSubledgerFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	testDB.TruncateAll(ctx)
	s := newStack(t, testDB)

	t.Run("receivable settles through partial payments", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		tenantID := s.createTenant(t, "Acme")

		w := s.do(t, http.MethodPost, "/api/v1/receivables/", tenantID, receivableRequest("INV-1001", 500))
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}

		var record dto.SubledgerResponse
		decodeJSON(t, w, &record)
		if record.Status != "OPEN" || !record.RemainingAmount.Equal(decimal.NewFromInt(500)) {
			t.Fatalf("expected OPEN record with 500 remaining, got %s with %s", record.Status, record.RemainingAmount)
		}

		w = s.do(t, http.MethodPost, "/api/v1/receivables/"+record.ID+"/payments", tenantID, dto.ApplyPaymentRequest{
			Amount:     decimal.NewFromInt(200),
			PaymentRef: "WIRE-1",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d applying payment, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var partial dto.SubledgerResponse
		decodeJSON(t, w, &partial)
		if partial.Status != "PARTIAL" || !partial.RemainingAmount.Equal(decimal.NewFromInt(300)) {
			t.Errorf("expected PARTIAL with 300 remaining, got %s with %s", partial.Status, partial.RemainingAmount)
		}

		// Paying more than remains is refused.
		w = s.do(t, http.MethodPost, "/api/v1/receivables/"+record.ID+"/payments", tenantID, dto.ApplyPaymentRequest{
			Amount: decimal.NewFromInt(400),
		})
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status %d for over-application, got %d: %s", http.StatusUnprocessableEntity, w.Code, w.Body.String())
		}

		w = s.do(t, http.MethodPost, "/api/v1/receivables/"+record.ID+"/payments", tenantID, dto.ApplyPaymentRequest{
			Amount:     decimal.NewFromInt(300),
			PaymentRef: "WIRE-2",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d settling record, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var settled dto.SubledgerResponse
		decodeJSON(t, w, &settled)
		if settled.Status != "PAID" || !settled.RemainingAmount.IsZero() {
			t.Errorf("expected PAID with nothing remaining, got %s with %s", settled.Status, settled.RemainingAmount)
		}

		w = s.do(t, http.MethodGet, "/api/v1/receivables/"+record.ID+"/payments", tenantID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d listing payments, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var applications dto.ListApplicationsResponse
		decodeJSON(t, w, &applications)
		if applications.Total != 2 {
			t.Errorf("expected 2 applications, got %d", applications.Total)
		}
	})

	t.Run("repeat on the same source returns the existing record", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		tenantID := s.createTenant(t, "Acme")

		w := s.do(t, http.MethodPost, "/api/v1/receivables/", tenantID, receivableRequest("INV-2001", 120))
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}
		var first dto.SubledgerResponse
		decodeJSON(t, w, &first)

		w = s.do(t, http.MethodPost, "/api/v1/receivables/", tenantID, receivableRequest("INV-2001", 120))
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d on repeat, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}
		var second dto.SubledgerResponse
		decodeJSON(t, w, &second)

		if second.ID != first.ID {
			t.Errorf("expected repeat to return record %s, got %s", first.ID, second.ID)
		}

		var count int
		if err := testDB.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM subledger_records WHERE tenant_id = $1", tenantID).Scan(&count); err != nil {
			t.Fatalf("failed to count records: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 record, got %d", count)
		}
	})

	t.Run("open filter hides settled records", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		tenantID := s.createTenant(t, "Acme")

		w := s.do(t, http.MethodPost, "/api/v1/receivables/", tenantID, receivableRequest("INV-3001", 100))
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}
		var open dto.SubledgerResponse
		decodeJSON(t, w, &open)

		w = s.do(t, http.MethodPost, "/api/v1/receivables/", tenantID, receivableRequest("INV-3002", 80))
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
		}
		var paid dto.SubledgerResponse
		decodeJSON(t, w, &paid)

		w = s.do(t, http.MethodPost, "/api/v1/receivables/"+paid.ID+"/payments", tenantID, dto.ApplyPaymentRequest{
			Amount: decimal.NewFromInt(80),
		})
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d settling record, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		w = s.do(t, http.MethodGet, "/api/v1/receivables/?open=true", tenantID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var list dto.ListSubledgersResponse
		decodeJSON(t, w, &list)
		if list.Total != 1 {
			t.Fatalf("expected 1 open record, got %d", list.Total)
		}
		if list.Records[0].ID != open.ID {
			t.Errorf("expected open record %s, got %s", open.ID, list.Records[0].ID)
		}
	})

	t.Run("payables age into overdue buckets", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		tenantID := s.createTenant(t, "Acme")

		payables := []dto.CreateSubledgerRequest{
			{CounterpartyID: "vend-1", SourceType: "BILL", SourceID: "BILL-1", Amount: decimal.NewFromInt(100),
				IssueDate: dto.Date{Time: mustDate("2025-08-01")}, DueDate: dto.Date{Time: mustDate("2025-08-20")}},
			{CounterpartyID: "vend-1", SourceType: "BILL", SourceID: "BILL-2", Amount: decimal.NewFromInt(200),
				IssueDate: dto.Date{Time: mustDate("2025-07-01")}, DueDate: dto.Date{Time: mustDate("2025-08-01")}},
			{CounterpartyID: "vend-2", SourceType: "BILL", SourceID: "BILL-3", Amount: decimal.NewFromInt(50),
				IssueDate: dto.Date{Time: mustDate("2025-05-01")}, DueDate: dto.Date{Time: mustDate("2025-06-01")}},
		}
		for _, p := range payables {
			w := s.do(t, http.MethodPost, "/api/v1/payables/", tenantID, p)
			if w.Code != http.StatusCreated {
				t.Fatalf("expected status %d creating %s, got %d: %s", http.StatusCreated, p.SourceID, w.Code, w.Body.String())
			}
		}

		w := s.do(t, http.MethodGet, "/api/v1/payables/aging?as_of=2025-08-15", tenantID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}

		var report dto.AgingReportResponse
		decodeJSON(t, w, &report)

		rows := make(map[string]dto.AgingRowResponse, len(report.Rows))
		for _, row := range report.Rows {
			rows[row.CounterpartyID] = row
		}

		vend1 := rows["vend-1"]
		if !vend1.Current.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected vend-1 current 100, got %s", vend1.Current)
		}
		if !vend1.Days1To30.Equal(decimal.NewFromInt(200)) {
			t.Errorf("expected vend-1 1-30 bucket 200, got %s", vend1.Days1To30)
		}

		vend2 := rows["vend-2"]
		if !vend2.Days61To90.Equal(decimal.NewFromInt(50)) {
			t.Errorf("expected vend-2 61-90 bucket 50, got %s", vend2.Days61To90)
		}

		if !report.Totals.Total.Equal(decimal.NewFromInt(350)) {
			t.Errorf("expected aging total 350, got %s", report.Totals.Total)
		}
	})
}
