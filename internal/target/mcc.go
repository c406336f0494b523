// Public domain.

package target

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// Confusion counts a selection's agreement with known truth.
type Confusion struct {
	TP, FN, FP, TN int
}

// Compare scores a selection bitmap for class cx against truth flags,
// such as the BOSS_TARGET1 column, for rows 0 through len(flags)-1.
func Compare(sel *roaring.Bitmap, flags []int64, cx int) (c Confusion) {
	bit := int64(1) << CList[cx].Bit
	for i, f := range flags {
		in := f&bit != 0
		switch pred := sel.Contains(uint32(i)); {
		case in && pred:
			c.TP++
		case in:
			c.FN++
		case pred:
			c.FP++
		default:
			c.TN++
		}
	}
	return
}

// Add accumulates counts of d into c.
func (c *Confusion) Add(d Confusion) {
	c.TP += d.TP
	c.FN += d.FN
	c.FP += d.FP
	c.TN += d.TN
}

// Total is the number of objects counted.
func (c Confusion) Total() int {
	return c.TP + c.FN + c.FP + c.TN
}

// MCC computes the Matthews correlation coefficient.  It is 0 when any
// marginal total is zero.
func (c Confusion) MCC() float64 {
	tp := float64(c.TP)
	fn := float64(c.FN)
	fp := float64(c.FP)
	tn := float64(c.TN)
	if d := (tp + fp) * (tp + fn) * (tn + fp) * (tn + fn); d > 0 {
		return (tp*tn - fp*fn) / math.Sqrt(d)
	}
	return 0
}
