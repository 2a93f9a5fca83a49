package fixed

import "fmt"

func Int14_2U(i int) Int14_2     { return Int14_2(i << 2) }
func Int14_2F(f float32) Int14_2 { return Int14_2(f * (1 << 2)) }

func (x Int14_2) Floor() int            { return int(x >> 2) }
func (x Int14_2) Ceil() int             { return int((int32(x) + (1<<2 - 1)) >> 2) }
func (x Int14_2) Float() float32        { return float32(x) / (1 << 2) }
func (x Int14_2) Mul(y Int14_2) Int14_2 { return Int14_2((int32(x) * int32(y)) >> 2) }
func (x Int14_2) Div(y Int14_2) Int14_2 { return Int14_2(int32(x) << 2 / int32(y)) }

func (x Int14_2) String() string {
	const shift, mask = 2, 1<<2 - 1
	return fmt.Sprintf("%d:%01d", int32(x>>shift), int32(x&mask))
}
