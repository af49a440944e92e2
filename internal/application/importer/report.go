package importer

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-pyme/internal/application/dto"
)

var hundred = decimal.NewFromInt(100)

type report struct {
	total, created, updated, failed, alerts int
	details                                 []dto.ImportRowResult
}

func (r *report) ok(row int, sku, action, msg string, notified bool) {
	if action == dto.ImportActionCreated {
		r.created++
	} else {
		r.updated++
	}
	if notified {
		r.alerts++
	}
	r.details = append(r.details, dto.ImportRowResult{Row: row, SKU: sku, Status: dto.ImportStatusOK, Action: action, Message: msg})
}

func (r *report) fail(row int, sku, msg string) {
	r.failed++
	r.details = append(r.details, dto.ImportRowResult{Row: row, SKU: sku, Status: dto.ImportStatusError, Message: msg})
}

func (r *report) build() *dto.ImportReport {
	succeeded := r.created + r.updated
	details := r.details
	if details == nil {
		details = []dto.ImportRowResult{}
	}
	return &dto.ImportReport{
		Summary: dto.ImportSummary{
			TotalRows:   r.total,
			Succeeded:   succeeded,
			Created:     r.created,
			Updated:     r.updated,
			Failed:      r.failed,
			SuccessRate: successRate(succeeded, r.total),
			AlertsSent:  r.alerts,
		},
		Details: details,
	}
}

// successRate "87.5%" con un decimal; "0%" sin filas.
func successRate(ok, total int) string {
	if total == 0 {
		return "0%"
	}
	rate := decimal.NewFromInt(int64(ok)).Mul(hundred).Div(decimal.NewFromInt(int64(total)))
	return rate.StringFixed(1) + "%"
}
