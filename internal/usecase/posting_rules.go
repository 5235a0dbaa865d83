package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fintech-kernel/acctd/internal/domain"
)

// SubledgerAction tells the auto-poster what to do with the subledger after
// the journal books.
type SubledgerAction string

const (
	SubledgerActionNone   SubledgerAction = ""
	SubledgerActionOpenAR SubledgerAction = "open_ar"
	SubledgerActionOpenAP SubledgerAction = "open_ap"
	SubledgerActionPayAR  SubledgerAction = "pay_ar"
	SubledgerActionPayAP  SubledgerAction = "pay_ap"
)

// PostingInstruction is the fully resolved outcome of one business event:
// the journal lines to book plus the subledger side effect.
type PostingInstruction struct {
	SourceType domain.SourceType
	Lines      []JournalLineInput
	Action     SubledgerAction
	// TargetSourceID names the source document whose record a payment
	// settles. Empty unless Action is pay_ar or pay_ap.
	TargetSourceID string
}

// UnknownEventError reports an inbound event type without a posting rule.
type UnknownEventError struct {
	EventType string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("no posting rule for event type %s", e.EventType)
}

// postingRuleFunc resolves one event type against the tenant configuration.
type postingRuleFunc func(evt *domain.BusinessEvent, cfg domain.PostingConfig) (*PostingInstruction, error)

// postingRules maps every supported inbound event type to its resolver. The
// table is the single place that decides which accounts a business event
// touches.
var postingRules = map[string]postingRuleFunc{
	domain.EventTypeSaleCompleted:     resolveSaleCompleted,
	domain.EventTypeInvoiceCreated:    resolveInvoiceCreated,
	domain.EventTypeInvoicePaid:       resolveInvoicePaid,
	domain.EventTypePurchaseCompleted: resolvePurchaseCompleted,
	domain.EventTypeBillCreated:       resolveBillCreated,
	domain.EventTypeBillPaid:          resolveBillPaid,
	domain.EventTypePaymentReceived:   resolvePaymentReceived,
	domain.EventTypePaymentMade:       resolvePaymentMade,
	domain.EventTypeExpenseRecorded:   resolveExpenseRecorded,
}

// ResolvePostingRule turns a business event into journal lines and a
// subledger directive using only the event and the tenant's posting
// configuration. It performs no I/O, so rules stay testable in isolation.
func ResolvePostingRule(evt *domain.BusinessEvent, cfg domain.PostingConfig) (*PostingInstruction, error) {
	rule, ok := postingRules[evt.Type]
	if !ok {
		return nil, &UnknownEventError{EventType: evt.Type}
	}
	if evt.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	return rule(evt, cfg)
}

// resolveSaleCompleted books a cash sale: money in, revenue up.
func resolveSaleCompleted(evt *domain.BusinessEvent, cfg domain.PostingConfig) (*PostingInstruction, error) {
	return &PostingInstruction{
		SourceType: domain.SourceTypeSale,
		Lines: []JournalLineInput{
			{AccountCode: cfg.ResolvePaymentAccount(evt.PaymentMethod), Debit: evt.Amount, Description: evt.Description},
			{AccountCode: cfg.SalesAccountCode, Credit: evt.Amount, Description: evt.Description},
		},
	}, nil
}

// resolveInvoiceCreated books revenue on credit and opens a receivable.
func resolveInvoiceCreated(evt *domain.BusinessEvent, cfg domain.PostingConfig) (*PostingInstruction, error) {
	return &PostingInstruction{
		SourceType: domain.SourceTypeSale,
		Lines: []JournalLineInput{
			{AccountCode: cfg.ReceivableAccountCode, Debit: evt.Amount, Description: evt.Description},
			{AccountCode: cfg.SalesAccountCode, Credit: evt.Amount, Description: evt.Description},
		},
		Action: SubledgerActionOpenAR,
	}, nil
}

// resolveInvoicePaid moves the settled amount from receivables to the
// payment account.
func resolveInvoicePaid(evt *domain.BusinessEvent, cfg domain.PostingConfig) (*PostingInstruction, error) {
	return &PostingInstruction{
		SourceType: domain.SourceTypePayment,
		Lines: []JournalLineInput{
			{AccountCode: cfg.ResolvePaymentAccount(evt.PaymentMethod), Debit: evt.Amount, Description: evt.Description},
			{AccountCode: cfg.ReceivableAccountCode, Credit: evt.Amount, Description: evt.Description},
		},
		Action:         SubledgerActionPayAR,
		TargetSourceID: targetOf(evt),
	}, nil
}

// resolvePurchaseCompleted books an immediately settled purchase.
func resolvePurchaseCompleted(evt *domain.BusinessEvent, cfg domain.PostingConfig) (*PostingInstruction, error) {
	return &PostingInstruction{
		SourceType: domain.SourceTypePurchase,
		Lines: []JournalLineInput{
			{AccountCode: cfg.PurchasesAccountCode, Debit: evt.Amount, Description: evt.Description},
			{AccountCode: cfg.ResolvePaymentAccount(evt.PaymentMethod), Credit: evt.Amount, Description: evt.Description},
		},
	}, nil
}

// resolveBillCreated books a supplier bill against expenses and opens a
// payable. Item categories split the expense side when present.
func resolveBillCreated(evt *domain.BusinessEvent, cfg domain.PostingConfig) (*PostingInstruction, error) {
	lines, err := categoryDebitLines(evt, cfg)
	if err != nil {
		return nil, err
	}
	lines = append(lines, JournalLineInput{
		AccountCode: cfg.PayableAccountCode,
		Credit:      evt.Amount,
		Description: evt.Description,
	})

	return &PostingInstruction{
		SourceType: domain.SourceTypeBill,
		Lines:      lines,
		Action:     SubledgerActionOpenAP,
	}, nil
}

// resolveBillPaid settles a payable with money out.
func resolveBillPaid(evt *domain.BusinessEvent, cfg domain.PostingConfig) (*PostingInstruction, error) {
	return &PostingInstruction{
		SourceType: domain.SourceTypePayment,
		Lines: []JournalLineInput{
			{AccountCode: cfg.PayableAccountCode, Debit: evt.Amount, Description: evt.Description},
			{AccountCode: cfg.ResolvePaymentAccount(evt.PaymentMethod), Credit: evt.Amount, Description: evt.Description},
		},
		Action:         SubledgerActionPayAP,
		TargetSourceID: targetOf(evt),
	}, nil
}

// resolvePaymentReceived is the generic inbound payment, posted like a paid
// invoice.
func resolvePaymentReceived(evt *domain.BusinessEvent, cfg domain.PostingConfig) (*PostingInstruction, error) {
	return resolveInvoicePaid(evt, cfg)
}

// resolvePaymentMade is the generic outbound payment, posted like a paid
// bill.
func resolvePaymentMade(evt *domain.BusinessEvent, cfg domain.PostingConfig) (*PostingInstruction, error) {
	return resolveBillPaid(evt, cfg)
}

// resolveExpenseRecorded books a directly settled expense. Item categories
// split the expense side when present.
func resolveExpenseRecorded(evt *domain.BusinessEvent, cfg domain.PostingConfig) (*PostingInstruction, error) {
	lines, err := categoryDebitLines(evt, cfg)
	if err != nil {
		return nil, err
	}
	lines = append(lines, JournalLineInput{
		AccountCode: cfg.ResolvePaymentAccount(evt.PaymentMethod),
		Credit:      evt.Amount,
		Description: evt.Description,
	})

	return &PostingInstruction{
		SourceType: domain.SourceTypeExpense,
		Lines:      lines,
	}, nil
}

// categoryDebitLines splits the debit side per item category when line items
// are present, falling back to one line on the tenant's expense account.
// Item amounts must sum to the event amount.
func categoryDebitLines(evt *domain.BusinessEvent, cfg domain.PostingConfig) ([]JournalLineInput, error) {
	if len(evt.Lines) == 0 {
		return []JournalLineInput{
			{AccountCode: cfg.ExpenseAccountCode, Debit: evt.Amount, Description: evt.Description},
		}, nil
	}

	lines := make([]JournalLineInput, 0, len(evt.Lines)+1)
	sum := decimal.Zero
	for _, item := range evt.Lines {
		if item.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrInvalidAmount
		}
		lines = append(lines, JournalLineInput{
			AccountCode: cfg.ResolveCategoryAccount(item.Category),
			Debit:       item.Amount,
			Description: item.Description,
		})
		sum = sum.Add(item.Amount)
	}

	if !sum.Equal(evt.Amount) {
		return nil, fmt.Errorf("line items sum to %s but the event amount is %s", sum, evt.Amount)
	}

	return lines, nil
}

// targetOf names the document a payment settles. Events without an explicit
// target settle the document they were sourced from.
func targetOf(evt *domain.BusinessEvent) string {
	if evt.TargetID != "" {
		return evt.TargetID
	}
	return evt.SourceID
}
