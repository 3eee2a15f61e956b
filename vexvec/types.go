package vexvec

type IntVector struct {
	Values []int32
	attrs  Attrs
}

func NewInt(values ...int32) *IntVector {
	return &IntVector{Values: values}
}

func (v *IntVector) Len() int { return len(v.Values) }
func (v *IntVector) Kind() Kind { return KindInt }
func (v *IntVector) Attributes() *Attrs { return &v.attrs }

func (v *IntVector) ElemInt(i int) int32 {
	return v.Values[i]
}

func (v *IntVector) ElemDouble(i int) float64 {
	return IntToDouble(v.Values[i])
}

type DoubleVector struct {
	Values []float64
	attrs  Attrs
}

func NewDouble(values ...float64) *DoubleVector {
	return &DoubleVector{Values: values}
}

func (v *DoubleVector) Len() int { return len(v.Values) }
func (v *DoubleVector) Kind() Kind { return KindDouble }
func (v *DoubleVector) Attributes() *Attrs { return &v.attrs }

func (v *DoubleVector) ElemInt(i int) int32 {
	return DoubleToInt(v.Values[i])
}

func (v *DoubleVector) ElemDouble(i int) float64 {
	return v.Values[i]
}

// IntSeq is a compact ascending integer sequence From..To inclusive. It
// never allocates a buffer for its elements.
type IntSeq struct {
	From  int32
	To    int32
	attrs Attrs
}

func NewSeq(from, to int32) *IntSeq {
	return &IntSeq{From: from, To: to}
}

func (v *IntSeq) Len() int {
	if v.To < v.From {
		return 0
	}
	return int(v.To-v.From) + 1
}

func (v *IntSeq) Kind() Kind { return KindInt }
func (v *IntSeq) Attributes() *Attrs { return &v.attrs }

func (v *IntSeq) ElemInt(i int) int32 {
	return v.From + int32(i)
}

func (v *IntSeq) ElemDouble(i int) float64 {
	return float64(v.From + int32(i))
}

// LogicalVector stores TRUE as 1, FALSE as 0 and NA as NAInt.
type LogicalVector struct {
	Values []int32
	attrs  Attrs
}

func NewLogical(values ...int32) *LogicalVector {
	return &LogicalVector{Values: values}
}

func Bool(b bool) *LogicalVector {
	if b {
		return NewLogical(1)
	}
	return NewLogical(0)
}

func (v *LogicalVector) Len() int { return len(v.Values) }
func (v *LogicalVector) Kind() Kind { return KindLogical }
func (v *LogicalVector) Attributes() *Attrs { return &v.attrs }

func (v *LogicalVector) ElemInt(i int) int32 {
	return v.Values[i]
}

func (v *LogicalVector) ElemDouble(i int) float64 {
	return IntToDouble(v.Values[i])
}

type StringVector struct {
	Values []string
	attrs  Attrs
}

func NewString(values ...string) *StringVector {
	return &StringVector{Values: values}
}

func (v *StringVector) Len() int { return len(v.Values) }
func (v *StringVector) Kind() Kind { return KindString }
func (v *StringVector) Attributes() *Attrs { return &v.attrs }

func (v *StringVector) ElemInt(i int) int32 {
	return NAInt
}

func (v *StringVector) ElemDouble(i int) float64 {
	return NADouble
}
