package model

// Matrix is a dense row-major table of float64, indexed by (step, entity) handles.
type Matrix struct {
	rows, cols int
	data       []float64
}

func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

func (m *Matrix) Dims() (int, int) { return m.rows, m.cols }

func (m *Matrix) At(r, c int) float64 { return m.data[r*m.cols+c] }

func (m *Matrix) Set(r, c int, v float64) { m.data[r*m.cols+c] = v }

// Row returns a view of row r.
func (m *Matrix) Row(r int) []float64 { return m.data[r*m.cols : (r+1)*m.cols] }

// Col copies column c.
func (m *Matrix) Col(c int) []float64 {
	out := make([]float64, m.rows)
	for r := 0; r < m.rows; r++ {
		out[r] = m.data[r*m.cols+c]
	}
	return out
}

func (m *Matrix) Clone() *Matrix {
	return &Matrix{rows: m.rows, cols: m.cols, data: append([]float64(nil), m.data...)}
}

// Apply replaces every cell of column c with fn(row, value).
func (m *Matrix) Apply(c int, fn func(r int, v float64) float64) {
	for r := 0; r < m.rows; r++ {
		i := r*m.cols + c
		m.data[i] = fn(r, m.data[i])
	}
}
