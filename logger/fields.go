package logger

import (
	"go.uber.org/zap"

	"github.com/soprimec/rental-engine/rental"
)

// Field helpers keep key names consistent across packages.

func Tenant(code string) zap.Field { return zap.String("tenant", code) }

func Property(code string) zap.Field { return zap.String("property", code) }

func Period(p rental.Period) zap.Field { return zap.Stringer("period", p) }

func Amount(a rental.Amount) zap.Field { return zap.Int64("amount", int64(a)) }

func RequestID(id string) zap.Field { return zap.String("request_id", id) }
