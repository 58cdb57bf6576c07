package seamcarve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

// stepRaster returns a gray raster whose left half is black and right half white.
func stepRaster(width, height int) *Raster {
	r := NewRaster(width, height, 1)
	for y := 0; y < height; y++ {
		for x := width / 2; x < width; x++ {
			r.Set(x, y, 0xff)
		}
	}
	return r
}

func TestEnergy_ConstantRasterHasNoEnergy(t *testing.T) {
	assert := assert.New(t)

	r := NewRaster(9, 5, 4)
	for i := range r.Pix {
		r.Pix[i] = 0x7f
	}
	em := Energy(r)
	rows, cols := em.Dims()
	assert.Equal(5, rows)
	assert.Equal(9, cols)
	assert.Zero(em.Max())
}

func TestEnergy_StepEdge(t *testing.T) {
	assert := assert.New(t)

	em := Energy(stepRaster(6, 4))
	for y := 0; y < 4; y++ {
		assert.Equal([]float64{0, 0, 1020, 1020, 0, 0}, em.Row(y), "row %d", y)
	}
}

func TestEnergy_HorizontalEdge(t *testing.T) {
	assert := assert.New(t)

	em := Energy(stepRaster(6, 4).Transpose())
	rows, cols := em.Dims()
	assert.Equal(6, rows)
	assert.Equal(4, cols)
	for y := 0; y < rows; y++ {
		want := 0.0
		if y == 2 || y == 3 {
			want = 1020
		}
		for x := 0; x < cols; x++ {
			assert.Equal(want, em.At(y, x))
		}
	}
}

func TestEnergy_SinglePixel(t *testing.T) {
	em := Energy(grayRaster([]uint8{200}))
	assert.Zero(t, em.At(0, 0))
}

func TestEnergy_WorkersDoNotChangeTheResult(t *testing.T) {
	r := randomRaster(7, 37, 83, 3)
	want := EnergyWorkers(r, 1)

	for _, workers := range []int{0, 2, 3, 8, 64} {
		got := EnergyWorkers(r, workers)
		assert.True(t, mat.Equal(want.Matrix(), got.Matrix()), "workers: %d", workers)
	}
}

func BenchmarkEnergy(b *testing.B) {
	r := randomRaster(1, 640, 480, 4)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Energy(r)
	}
}
