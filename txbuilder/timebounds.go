package txbuilder

import "github.com/stellar/go/xdr"

// TimeBounds is the optional validity window of a transaction, in seconds
// since epoch. MaxTime of zero means no upper bound. A nil *TimeBounds means
// the transaction is valid at any time.
type TimeBounds struct {
	MinTime int64
	MaxTime int64
}

// NewTimeBounds returns a window [minTime, maxTime].
func NewTimeBounds(minTime, maxTime int64) *TimeBounds {
	return &TimeBounds{MinTime: minTime, MaxTime: maxTime}
}

// NewTimeout returns a window from now until now+seconds. The lower bound is
// left open so clock skew between client and network cannot invalidate the
// transaction early.
func NewTimeout(now int64, seconds int64) *TimeBounds {
	return &TimeBounds{MinTime: 0, MaxTime: now + seconds}
}

func (tb *TimeBounds) toXDR() *xdr.TimeBounds {
	if tb == nil {
		return nil
	}
	return &xdr.TimeBounds{
		MinTime: xdr.TimePoint(tb.MinTime),
		MaxTime: xdr.TimePoint(tb.MaxTime),
	}
}

// toPreconditions maps the optional window onto the preconditions union.
// PRECOND_NONE and PRECOND_TIME encode byte-identically to the historical
// optional-TimeBounds field, so signatures over either form agree.
func (tb *TimeBounds) toPreconditions() xdr.Preconditions {
	if tb == nil {
		return xdr.Preconditions{Type: xdr.PreconditionTypePrecondNone}
	}
	return xdr.Preconditions{
		Type:       xdr.PreconditionTypePrecondTime,
		TimeBounds: tb.toXDR(),
	}
}

func timeBoundsFromXDR(x *xdr.TimeBounds) *TimeBounds {
	if x == nil {
		return nil
	}
	return &TimeBounds{MinTime: int64(x.MinTime), MaxTime: int64(x.MaxTime)}
}

func timeBoundsFromPreconditions(cond xdr.Preconditions) *TimeBounds {
	switch cond.Type {
	case xdr.PreconditionTypePrecondTime:
		return timeBoundsFromXDR(cond.TimeBounds)
	case xdr.PreconditionTypePrecondV2:
		if cond.V2 != nil {
			return timeBoundsFromXDR(cond.V2.TimeBounds)
		}
	}
	return nil
}
