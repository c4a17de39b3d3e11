package shares

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/observability"
)

var (
	// ErrInvalidDistribution indicates malformed distribution input.
	ErrInvalidDistribution = errors.New("shares: invalid distribution")
	// ErrInvalidPayment indicates malformed payment input.
	ErrInvalidPayment = errors.New("shares: invalid payment")
	// ErrInvalidShareUser indicates malformed shareholder input.
	ErrInvalidShareUser = errors.New("shares: invalid share user")
)

// AllocationInput is one shareholder's portion as submitted by the
// caller.
type AllocationInput struct {
	ShareUserID      int64
	Percentage       decimal.Decimal
	ProfitLose       Status
	Amount           decimal.Decimal
	PercentageAmount decimal.Decimal
}

// DistributionInput groups fields for creating a distribution.
// TotalAmount and TotalPercentage are always derived from Allocations.
type DistributionInput struct {
	PeriodFrom   time.Time
	PeriodTo     time.Time
	Status       Status
	ProfitAmount decimal.Decimal
	LossAmount   decimal.Decimal
	Allocations  []AllocationInput
}

func (in DistributionInput) validate() error {
	if in.PeriodFrom.IsZero() || in.PeriodTo.IsZero() {
		return fmt.Errorf("%w: period required", ErrInvalidDistribution)
	}
	if in.PeriodTo.Before(in.PeriodFrom) {
		return fmt.Errorf("%w: period_to before period_from", ErrInvalidDistribution)
	}
	switch in.Status {
	case StatusProfit, StatusLoss:
	default:
		return fmt.Errorf("%w: invalid status %q", ErrInvalidDistribution, in.Status)
	}
	if len(in.Allocations) == 0 {
		return fmt.Errorf("%w: at least one allocation required", ErrInvalidDistribution)
	}
	for idx, a := range in.Allocations {
		if a.ShareUserID == 0 {
			return fmt.Errorf("%w: allocation %d missing share user", ErrInvalidDistribution, idx)
		}
		if a.Percentage.IsNegative() || a.Amount.IsNegative() {
			return fmt.Errorf("%w: allocation %d negative value", ErrInvalidDistribution, idx)
		}
		switch a.ProfitLose {
		case StatusProfit, StatusLoss:
		default:
			return fmt.Errorf("%w: allocation %d invalid profit_lose %q", ErrInvalidDistribution, idx, a.ProfitLose)
		}
	}
	return nil
}

// tracker mutates allocation state in reaction to PaymentRecorded
// events. Kept separate from the service so the settlement rule stays
// an explicit subscription rather than an inline side effect.
type tracker struct{}

// Apply decrements the outstanding balance. Paying past zero clamps to
// exactly zero; the excess is absorbed but stays visible on the
// payment row itself.
func (tracker) Apply(ctx context.Context, tx TxRepository, a Allocation, ev PaymentRecorded) error {
	balance := a.BalanceAmount.Sub(ev.PaidAmount)
	isPaid := false
	if balance.LessThanOrEqual(decimal.Zero) {
		balance = decimal.Zero
		isPaid = true
	}
	return tx.UpdateAllocationBalance(ctx, a.ID, balance, isPaid)
}

type Service struct {
	repo       Repository
	settlement tracker
	metrics    *observability.Metrics
	now        func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetMetrics injects the Prometheus collectors.
func (s *Service) SetMetrics(m *observability.Metrics) {
	s.metrics = m
}

func (s *Service) CreateShareUser(ctx context.Context, in ShareUser) (ShareUser, error) {
	if strings.TrimSpace(in.Name) == "" {
		return ShareUser{}, fmt.Errorf("%w: name required", ErrInvalidShareUser)
	}
	switch in.Category {
	case CategoryPartners, CategoryManagements:
	default:
		return ShareUser{}, fmt.Errorf("%w: invalid category %q", ErrInvalidShareUser, in.Category)
	}
	return s.repo.CreateShareUser(ctx, in)
}

func (s *Service) ListShareUsers(ctx context.Context) ([]ShareUser, error) {
	return s.repo.ListShareUsers(ctx)
}

func (s *Service) GetShareUser(ctx context.Context, id int64) (ShareUser, error) {
	return s.repo.GetShareUser(ctx, id)
}

// CreateDistribution allocates the next sequential transaction_no and
// persists the parent with one allocation row per shareholder, all in
// one transaction. A transaction_no collision under a concurrent race
// is retried once before surfacing as a conflict.
func (s *Service) CreateDistribution(ctx context.Context, input DistributionInput) (Distribution, error) {
	if err := input.validate(); err != nil {
		return Distribution{}, err
	}

	created, err := s.createDistributionOnce(ctx, input)
	if errors.Is(err, ErrTransactionNoConflict) {
		created, err = s.createDistributionOnce(ctx, input)
	}
	return created, err
}

func (s *Service) createDistributionOnce(ctx context.Context, input DistributionInput) (Distribution, error) {
	totalAmount := decimal.Zero
	totalPercentage := decimal.Zero
	for _, a := range input.Allocations {
		totalAmount = totalAmount.Add(a.Amount)
		totalPercentage = totalPercentage.Add(a.Percentage)
	}

	var created Distribution
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		transactionNo, err := nextTransactionNo(ctx, tx)
		if err != nil {
			return err
		}
		parent, err := tx.InsertDistribution(ctx, Distribution{
			TransactionNo:   transactionNo,
			PeriodFrom:      input.PeriodFrom,
			PeriodTo:        input.PeriodTo,
			TotalPercentage: totalPercentage,
			TotalAmount:     totalAmount,
			Status:          input.Status,
			ProfitAmount:    input.ProfitAmount,
			LossAmount:      input.LossAmount,
		})
		if err != nil {
			return err
		}
		for _, a := range input.Allocations {
			allocation, err := tx.InsertAllocation(ctx, Allocation{
				DistributionID:   parent.ID,
				ShareUserID:      a.ShareUserID,
				Percentage:       a.Percentage,
				ProfitLose:       a.ProfitLose,
				Amount:           a.Amount,
				PercentageAmount: a.PercentageAmount,
				BalanceAmount:    a.Amount,
				IsPaid:           false,
			})
			if err != nil {
				return err
			}
			parent.Allocations = append(parent.Allocations, allocation)
		}
		created = parent
		return nil
	})
	if err != nil {
		return Distribution{}, err
	}
	return created, nil
}

// nextTransactionNo parses the latest transaction_no as an integer and
// adds one, starting from "1" when no distributions exist. Prior rows
// are expected to carry numeric strings only.
func nextTransactionNo(ctx context.Context, tx TxRepository) (string, error) {
	latest, found, err := tx.LatestTransactionNo(ctx)
	if err != nil {
		return "", err
	}
	if !found {
		return "1", nil
	}
	n, err := strconv.ParseInt(latest, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: non-numeric transaction_no %q", ErrInvalidDistribution, latest)
	}
	return strconv.FormatInt(n+1, 10), nil
}

func (s *Service) GetDistribution(ctx context.Context, transactionNo string) (Distribution, error) {
	return s.repo.GetDistributionByTransactionNo(ctx, transactionNo)
}

func (s *Service) ListDistributions(ctx context.Context) ([]Distribution, error) {
	return s.repo.ListDistributions(ctx)
}

func (s *Service) ListAllocationsByShareUser(ctx context.Context, shareUserID int64) ([]Allocation, error) {
	return s.repo.ListAllocationsByShareUser(ctx, shareUserID)
}

func (s *Service) ListPayments(ctx context.Context, allocationID int64) ([]Payment, error) {
	return s.repo.ListPayments(ctx, allocationID)
}

// RecordPayment appends a payment row against an allocation and fires
// the PaymentRecorded event at the settlement tracker inside the same
// transaction, so the balance transition commits with the payment or
// not at all.
func (s *Service) RecordPayment(ctx context.Context, allocationID int64, paidAmount decimal.Decimal, paidDate time.Time) (Payment, error) {
	if allocationID == 0 {
		return Payment{}, fmt.Errorf("%w: allocation required", ErrInvalidPayment)
	}
	if !paidAmount.IsPositive() {
		return Payment{}, fmt.Errorf("%w: paid_amount must be positive", ErrInvalidPayment)
	}
	if paidDate.IsZero() {
		paidDate = s.now()
	}

	var payment Payment
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		allocation, err := tx.GetAllocationForUpdate(ctx, allocationID)
		if err != nil {
			return err
		}
		settles := paidAmount.GreaterThanOrEqual(allocation.BalanceAmount)
		payment, err = tx.InsertPayment(ctx, Payment{
			AllocationID: allocationID,
			IsPaid:       settles,
			PaidDate:     paidDate,
			PaidAmount:   paidAmount,
		})
		if err != nil {
			return err
		}
		return s.settlement.Apply(ctx, tx, allocation, PaymentRecorded{
			AllocationID: allocationID,
			PaidAmount:   paidAmount,
			PaidDate:     paidDate,
		})
	})
	if err != nil {
		return Payment{}, err
	}
	s.metrics.IncSharePayments()
	return payment, nil
}
