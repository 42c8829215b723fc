package pricing

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/hampers-api/internal/common"
	"github.com/noah-isme/hampers-api/internal/obs"
)

func countQuote(result string) {
	if obs.QuoteTotal != nil {
		obs.QuoteTotal.WithLabelValues(result).Inc()
	}
}

func countDiscount(mode, result string) {
	if obs.DiscountTotal != nil {
		obs.DiscountTotal.WithLabelValues(mode, result).Inc()
	}
}

// Handler exposes the pricing and discount simulation endpoints.
type Handler struct {
	DefaultSingleShipping decimal.Decimal
	DefaultMultiShipping  decimal.Decimal
}

type quoteRequest struct {
	SupplyPrice    decimal.Decimal  `json:"supplyPrice"`
	Quantity       int              `json:"quantity"`
	SingleShipping *decimal.Decimal `json:"singleShipping"`
	MultiShipping  *decimal.Decimal `json:"multiShipping"`
	ShopPrice      decimal.Decimal  `json:"shopPrice"`
}

type discountRequest struct {
	quoteRequest
	Mode    string           `json:"mode"`
	Amount  *decimal.Decimal `json:"amount"`
	Percent *decimal.Decimal `json:"percent"`
}

type quotePayload struct {
	Quantity         int    `json:"quantity"`
	GoodsCost        string `json:"goodsCost"`
	SupplierShipping string `json:"supplierShipping"`
	CustomerShipping string `json:"customerShipping"`
	CustomerTotal    string `json:"customerTotal"`
	Fee              string `json:"fee"`
	TotalExpense     string `json:"totalExpense"`
	Profit           string `json:"profit"`
	MaxDiscount      string `json:"maxDiscount"`
}

type discountPayload struct {
	DiscountAmount          string `json:"discountAmount"`
	DiscountedCustomerTotal string `json:"discountedCustomerTotal"`
	DiscountedFee           string `json:"discountedFee"`
	DiscountedProfit        string `json:"discountedProfit"`
	ExceedsMaxDiscount      bool   `json:"exceedsMaxDiscount"`
}

// Quote handles POST /api/v1/pricing/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	res, err := Compute(h.toInput(req))
	if err != nil {
		countQuote("rejected")
		h.writeComputeError(w, err)
		return
	}
	countQuote("ok")
	common.JSON(w, http.StatusOK, map[string]any{"data": toQuotePayload(res)})
}

// Discount handles POST /api/v1/pricing/discount.
func (h *Handler) Discount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	target, err := toTarget(req)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	res, err := Compute(h.toInput(req.quoteRequest))
	if err != nil {
		countDiscount(string(target.Mode), "rejected")
		h.writeComputeError(w, err)
		return
	}
	outcome, err := ComputeDiscount(res, target)
	if err != nil {
		countDiscount(string(target.Mode), "rejected")
		h.writeComputeError(w, err)
		return
	}
	countDiscount(string(target.Mode), "ok")
	if outcome.ExceedsMaxDiscount && obs.DiscountExceededTotal != nil {
		obs.DiscountExceededTotal.Inc()
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"quote": toQuotePayload(res),
		"discount": discountPayload{
			DiscountAmount:          outcome.DiscountAmount.StringFixed(2),
			DiscountedCustomerTotal: outcome.DiscountedCustomerTotal.StringFixed(2),
			DiscountedFee:           outcome.DiscountedTransactionFee.StringFixed(2),
			DiscountedProfit:        outcome.DiscountedProfit.StringFixed(2),
			ExceedsMaxDiscount:      outcome.ExceedsMaxDiscount,
		},
	}})
}

func (h *Handler) toInput(req quoteRequest) Input {
	single := h.DefaultSingleShipping
	if req.SingleShipping != nil {
		single = *req.SingleShipping
	}
	multi := h.DefaultMultiShipping
	if req.MultiShipping != nil {
		multi = *req.MultiShipping
	}
	return Input{
		SupplyPrice:             req.SupplyPrice,
		Quantity:                req.Quantity,
		SingleShippingFee:       single,
		MultiShippingFeePerUnit: multi,
		ShopPrice:               req.ShopPrice,
	}
}

func toTarget(req discountRequest) (Target, error) {
	switch TargetMode(strings.TrimSpace(req.Mode)) {
	case TargetAmount:
		if req.Amount == nil {
			return Target{}, errors.New("amount is required for amount mode")
		}
		return AmountTarget(*req.Amount), nil
	case TargetProfitPercent:
		if req.Percent == nil {
			return Target{}, errors.New("percent is required for percent mode")
		}
		return ProfitPercentTarget(*req.Percent), nil
	case TargetBreakEven:
		return BreakEvenTarget(), nil
	default:
		return Target{}, ErrUnknownTargetMode
	}
}

func toQuotePayload(res Result) quotePayload {
	return quotePayload{
		Quantity:         res.Quantity,
		GoodsCost:        res.GoodsCost.StringFixed(2),
		SupplierShipping: res.SupplierShippingFee.StringFixed(2),
		CustomerShipping: res.CustomerShippingFee.StringFixed(2),
		CustomerTotal:    res.CustomerTotal.StringFixed(2),
		Fee:              res.TransactionFee.StringFixed(2),
		TotalExpense:     res.TotalExpense.StringFixed(2),
		Profit:           res.Profit.StringFixed(2),
		MaxDiscount:      res.MaxDiscount.StringFixed(2),
	}
}

func (h *Handler) writeComputeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNonPositiveSupplyPrice),
		errors.Is(err, ErrNonPositiveShopPrice),
		errors.Is(err, ErrNonPositiveQuantity),
		errors.Is(err, ErrNegativeShippingFee),
		errors.Is(err, ErrPercentOutOfRange),
		errors.Is(err, ErrUnknownTargetMode):
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "calculation failed", nil)
	}
}
