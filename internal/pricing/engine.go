package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrNonPositiveSupplyPrice is returned when the per-unit supplier cost is zero or negative.
	ErrNonPositiveSupplyPrice = errors.New("supply price must be greater than zero")
	// ErrNonPositiveShopPrice is returned when the customer-facing unit price is zero or negative.
	ErrNonPositiveShopPrice = errors.New("shop price must be greater than zero")
	// ErrNonPositiveQuantity is returned when the order quantity is below one.
	ErrNonPositiveQuantity = errors.New("quantity must be a positive integer")
	// ErrNegativeShippingFee is returned when either customer shipping fee is negative.
	ErrNegativeShippingFee = errors.New("shipping fee must not be negative")
	// ErrPercentOutOfRange is returned for profit reduction targets outside [0, 100].
	ErrPercentOutOfRange = errors.New("profit reduction percentage must be between 0 and 100")
	// ErrUnknownTargetMode is returned for an unrecognised discount target mode.
	ErrUnknownTargetMode = errors.New("unknown discount target mode")
)

// feeRate is the payment-processing cut levied on the customer total.
// retainedRate is the exact complement 1 - feeRate; the discount inversion
// divides by it and it must never be approximated.
var (
	feeRate      = decimal.New(6, -3)   // 0.006
	retainedRate = decimal.New(994, -3) // 0.994

	supplierFeeSingle = decimal.NewFromInt(3)
	supplierFeePair   = decimal.NewFromInt(5)

	hundred = decimal.NewFromInt(100)
)

// Input captures the raw parameters of one pricing calculation.
// It is constructed per request and never persisted.
type Input struct {
	SupplyPrice             decimal.Decimal
	Quantity                int
	SingleShippingFee       decimal.Decimal
	MultiShippingFeePerUnit decimal.Decimal
	ShopPrice               decimal.Decimal
}

// Result is the full cost/payment/fee/profit breakdown derived from an Input.
// Fields are never mutated after Compute returns.
type Result struct {
	Quantity            int
	GoodsCost           decimal.Decimal
	SupplierShippingFee decimal.Decimal
	CustomerShippingFee decimal.Decimal
	CustomerTotal       decimal.Decimal
	TransactionFee      decimal.Decimal
	SupplierExpense     decimal.Decimal
	TotalExpense        decimal.Decimal
	Profit              decimal.Decimal
	MaxDiscount         decimal.Decimal
}

// Validate reports the first violated precondition, if any.
func (in Input) Validate() error {
	if !in.SupplyPrice.IsPositive() {
		return ErrNonPositiveSupplyPrice
	}
	if in.Quantity < 1 {
		return ErrNonPositiveQuantity
	}
	if in.SingleShippingFee.IsNegative() || in.MultiShippingFeePerUnit.IsNegative() {
		return ErrNegativeShippingFee
	}
	if !in.ShopPrice.IsPositive() {
		return ErrNonPositiveShopPrice
	}
	return nil
}

// SupplierShippingFee returns the flat shipping fee the supplier charges for
// an order of the given quantity. The schedule is a tier lookup, not a
// formula: one unit ships for 3, two for 5, and three or more ship free.
func SupplierShippingFee(quantity int) decimal.Decimal {
	switch quantity {
	case 1:
		return supplierFeeSingle
	case 2:
		return supplierFeePair
	default:
		return decimal.Zero
	}
}

// Compute derives the full pricing breakdown from the input. It fails fast on
// any violated precondition and never returns a partial result.
func Compute(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	qty := decimal.NewFromInt(int64(in.Quantity))
	goodsCost := in.SupplyPrice.Mul(qty)
	supplierShipping := SupplierShippingFee(in.Quantity)

	customerShipping := in.SingleShippingFee
	if in.Quantity >= 2 {
		// Charged per unit, unlike the flat supplier fee.
		customerShipping = in.MultiShippingFeePerUnit.Mul(qty)
	}

	customerTotal := in.ShopPrice.Mul(qty).Add(customerShipping)
	transactionFee := customerTotal.Mul(feeRate)
	supplierExpense := goodsCost.Add(supplierShipping)
	totalExpense := supplierExpense.Add(transactionFee)
	profit := customerTotal.Sub(totalExpense)

	// Break-even discount d solves (customerTotal - d) * 0.994 = supplierExpense.
	maxDiscount := customerTotal.Sub(supplierExpense.Div(retainedRate))
	if maxDiscount.IsNegative() {
		maxDiscount = decimal.Zero
	}

	return Result{
		Quantity:            in.Quantity,
		GoodsCost:           goodsCost,
		SupplierShippingFee: supplierShipping,
		CustomerShippingFee: customerShipping,
		CustomerTotal:       customerTotal,
		TransactionFee:      transactionFee,
		SupplierExpense:     supplierExpense,
		TotalExpense:        totalExpense,
		Profit:              profit,
		MaxDiscount:         maxDiscount,
	}, nil
}

// TargetMode selects how the discount amount is derived.
type TargetMode string

const (
	// TargetAmount applies a caller-provided absolute discount.
	TargetAmount TargetMode = "amount"
	// TargetProfitPercent solves for the discount that reduces profit by the given percentage.
	TargetProfitPercent TargetMode = "percent"
	// TargetBreakEven solves for the discount at which profit is exactly zero.
	TargetBreakEven TargetMode = "break_even"
)

// Target describes the desired outcome of a discount computation.
type Target struct {
	Mode    TargetMode
	Amount  decimal.Decimal
	Percent decimal.Decimal
}

// AmountTarget builds a target for an absolute discount amount.
func AmountTarget(amount decimal.Decimal) Target {
	return Target{Mode: TargetAmount, Amount: amount}
}

// ProfitPercentTarget builds a target reducing profit by percent (0-100).
func ProfitPercentTarget(percent decimal.Decimal) Target {
	return Target{Mode: TargetProfitPercent, Percent: percent}
}

// BreakEvenTarget builds a target for zero discounted profit.
func BreakEvenTarget() Target {
	return Target{Mode: TargetBreakEven}
}

// Outcome reports the effect of applying a hypothetical discount.
type Outcome struct {
	DiscountAmount           decimal.Decimal
	DiscountedCustomerTotal  decimal.Decimal
	DiscountedTransactionFee decimal.Decimal
	DiscountedProfit         decimal.Decimal
	ExceedsMaxDiscount       bool
}

// ComputeDiscount resolves the target into a concrete discount amount and the
// resulting payment, fee, and profit figures. The discount is never clamped:
// probing loss scenarios is legitimate, so a discount beyond the break-even
// point yields a negative profit together with the ExceedsMaxDiscount flag.
func ComputeDiscount(res Result, target Target) (Outcome, error) {
	var amount decimal.Decimal
	switch target.Mode {
	case TargetAmount:
		amount = target.Amount
	case TargetProfitPercent:
		if target.Percent.IsNegative() || target.Percent.GreaterThan(hundred) {
			return Outcome{}, ErrPercentOutOfRange
		}
		// Same inversion as the break-even formula with a non-zero target:
		// d = customerTotal - (supplierExpense + expectedProfit) / 0.994.
		decrease := res.Profit.Mul(target.Percent).Div(hundred)
		expectedProfit := res.Profit.Sub(decrease)
		amount = res.CustomerTotal.Sub(res.SupplierExpense.Add(expectedProfit).Div(retainedRate))
	case TargetBreakEven:
		amount = res.MaxDiscount
	default:
		return Outcome{}, ErrUnknownTargetMode
	}

	discountedTotal := res.CustomerTotal.Sub(amount)
	discountedFee := discountedTotal.Mul(feeRate)
	discountedProfit := discountedTotal.Sub(discountedFee).Sub(res.SupplierExpense)

	return Outcome{
		DiscountAmount:           amount,
		DiscountedCustomerTotal:  discountedTotal,
		DiscountedTransactionFee: discountedFee,
		DiscountedProfit:         discountedProfit,
		ExceedsMaxDiscount:       amount.GreaterThan(res.MaxDiscount),
	}, nil
}
