package geom

import (
	"math"
	"math/big"
	"math/bits"
)

// MaxCoord bounds the magnitude of board coordinates. Within it every
// difference fits in 31 bits, so products of two differences and their
// sums stay inside an int64.
const MaxCoord = 1 << 30

// EcoordMax is the saturation value of widened squared distances.
const EcoordMax = math.MaxInt64

// narrow is the largest magnitude for which a*b - c*d cannot overflow.
const narrow = 1 << 31

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func sign64(v int64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func isNarrow(vs ...int64) bool {
	for _, v := range vs {
		if v >= narrow || v <= -narrow {
			return false
		}
	}
	return true
}

// bigMulSub returns a*b - c*d without overflow.
func bigMulSub(a, b, c, d int64) *big.Int {
	x := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	y := new(big.Int).Mul(big.NewInt(c), big.NewInt(d))
	return x.Sub(x, y)
}

// bigDot returns a*b + c*d without overflow.
func bigDot(a, b, c, d int64) *big.Int {
	x := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	y := new(big.Int).Mul(big.NewInt(c), big.NewInt(d))
	return x.Add(x, y)
}

// bigRound returns num/den rounded with halves away from zero, like
// Rescale. A zero divisor or a quotient outside the int64 range
// saturates to ±EcoordMax.
func bigRound(num, den *big.Int) int64 {
	neg := num.Sign()*den.Sign() < 0
	if den.Sign() == 0 {
		neg = num.Sign() < 0
	}
	saturated := int64(EcoordMax)
	if neg {
		saturated = -EcoordMax
	}
	if den.Sign() == 0 {
		return saturated
	}

	d := new(big.Int).Abs(den)
	q := new(big.Int).Abs(num)
	q.Add(q, new(big.Int).Rsh(d, 1))
	q.Quo(q, d)
	if !q.IsInt64() {
		return saturated
	}
	if neg {
		return -q.Int64()
	}
	return q.Int64()
}

// crossSign returns the exact sign of a*b - c*d.
func crossSign(a, b, c, d int64) int {
	if isNarrow(a, b, c, d) {
		return sign64(a*b - c*d)
	}
	return bigMulSub(a, b, c, d).Sign()
}

// Orient2D returns +1 if c lies to the left of the directed line a->b,
// -1 if it lies to the right and 0 if the three points are collinear.
// The result is exact for any int64 coordinates.
func Orient2D(a, b, c Point) int {
	return crossSign(
		int64(b.X)-int64(a.X), int64(c.Y)-int64(a.Y),
		int64(b.Y)-int64(a.Y), int64(c.X)-int64(a.X),
	)
}

// inCircleErrBound is Shewchuk's static filter constant for the
// incircle determinant evaluated in float64.
var inCircleErrBound = (10.0 + 96.0*epsilon) * epsilon

const epsilon = 1.0 / (1 << 53)

// InCircle returns +1 if d lies strictly inside the circle through the
// counter-clockwise triangle a, b, c, -1 if it lies outside and 0 if the
// four points are cocircular. A floating-point evaluation is accepted
// when its magnitude clears the error bound; otherwise the determinant
// is evaluated exactly.
func InCircle(a, b, c, d Point) int {
	adx, ady := float64(a.X-d.X), float64(a.Y-d.Y)
	bdx, bdy := float64(b.X-d.X), float64(b.Y-d.Y)
	cdx, cdy := float64(c.X-d.X), float64(c.Y-d.Y)

	bdxcdy, cdxbdy := bdx*cdy, cdx*bdy
	alift := adx*adx + ady*ady
	cdxady, adxcdy := cdx*ady, adx*cdy
	blift := bdx*bdx + bdy*bdy
	adxbdy, bdxady := adx*bdy, bdx*ady
	clift := cdx*cdx + cdy*cdy

	det := alift*(bdxcdy-cdxbdy) + blift*(cdxady-adxcdy) + clift*(adxbdy-bdxady)
	permanent := (math.Abs(bdxcdy)+math.Abs(cdxbdy))*alift +
		(math.Abs(cdxady)+math.Abs(adxcdy))*blift +
		(math.Abs(adxbdy)+math.Abs(bdxady))*clift

	bound := inCircleErrBound * permanent
	if det > bound {
		return 1
	}
	if -det > bound {
		return -1
	}
	return inCircleExact(a, b, c, d)
}

func inCircleExact(a, b, c, d Point) int {
	diff := func(u, v int) *big.Int { return big.NewInt(int64(u) - int64(v)) }
	adx, ady := diff(a.X, d.X), diff(a.Y, d.Y)
	bdx, bdy := diff(b.X, d.X), diff(b.Y, d.Y)
	cdx, cdy := diff(c.X, d.X), diff(c.Y, d.Y)

	lift := func(x, y *big.Int) *big.Int {
		r := new(big.Int).Mul(x, x)
		return r.Add(r, new(big.Int).Mul(y, y))
	}
	minor := func(x1, y1, x2, y2 *big.Int) *big.Int {
		r := new(big.Int).Mul(x1, y2)
		return r.Sub(r, new(big.Int).Mul(x2, y1))
	}

	det := new(big.Int).Mul(lift(adx, ady), minor(bdx, bdy, cdx, cdy))
	det.Add(det, new(big.Int).Mul(lift(bdx, bdy), minor(cdx, cdy, adx, ady)))
	det.Add(det, new(big.Int).Mul(lift(cdx, cdy), minor(adx, ady, bdx, bdy)))
	return det.Sign()
}

// ISqrt returns the floor of the square root of x. Negative input
// saturates to EcoordMax.
func ISqrt(x int64) int64 {
	if x < 0 {
		return EcoordMax
	}
	if x < 2 {
		return x
	}
	r := int64(math.Sqrt(float64(x)))
	// float64 rounding may be off by one in either direction
	for r > 0 && (r > 3037000499 || r*r > x) {
		r--
	}
	for r < 3037000499 && (r+1)*(r+1) <= x {
		r++
	}
	return r
}

// Rescale returns round(a*b/c) using a 128-bit intermediate product.
// Halves round away from zero. A zero divisor or a quotient outside the
// int64 range saturates to ±EcoordMax.
func Rescale(a, b, c int64) int64 {
	neg := (a < 0) != (b < 0)
	if c < 0 {
		neg = !neg
	}
	if c == 0 {
		if neg {
			return -EcoordMax
		}
		return EcoordMax
	}
	ua, ub, uc := uabs(a), uabs(b), uabs(c)

	hi, lo := bits.Mul64(ua, ub)
	// add c/2 for rounding
	var carry uint64
	lo, carry = bits.Add64(lo, uc/2, 0)
	hi += carry

	if hi >= uc {
		if neg {
			return -EcoordMax
		}
		return EcoordMax
	}
	q, _ := bits.Div64(hi, lo, uc)
	if q > math.MaxInt64 {
		if neg {
			return -EcoordMax
		}
		return EcoordMax
	}
	if neg {
		return -int64(q)
	}
	return int64(q)
}

func uabs(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}

// squaredSum returns x*x + y*y, saturating to EcoordMax on overflow.
func squaredSum(x, y int64) int64 {
	ux, uy := uabs(x), uabs(y)
	hx, lx := bits.Mul64(ux, ux)
	hy, ly := bits.Mul64(uy, uy)
	if hx != 0 || hy != 0 {
		return EcoordMax
	}
	s, carry := bits.Add64(lx, ly, 0)
	if carry != 0 || s > math.MaxInt64 {
		return EcoordMax
	}
	return int64(s)
}
