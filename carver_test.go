package seamcarve

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	imgWidth  = 12
	imgHeight = 10
)

func TestParseAxis(t *testing.T) {
	assert := assert.New(t)

	for name, want := range map[string]Axis{
		"vertical": Vertical, "V": Vertical,
		"horizontal": Horizontal, " h ": Horizontal,
	} {
		got, err := ParseAxis(name)
		assert.NoError(err)
		assert.Equal(want, got)
	}
	_, err := ParseAxis("diagonal")
	assert.True(IsKind(err, InvalidParameter))
}

func TestCarver_ShrinksTheCarvedDimension(t *testing.T) {
	src := randomRaster(11, imgWidth, imgHeight, 4)
	orig := src.Clone()

	for _, s := range Strategies {
		t.Run(string(s), func(t *testing.T) {
			assert := assert.New(t)
			opts := Options{Strategy: s}

			out, stats, err := CarveWithStats(context.Background(), src, 4, Vertical, opts)
			require.NoError(t, err)
			assert.Equal(imgWidth-4, out.Width)
			assert.Equal(imgHeight, out.Height)
			assert.Equal(4, out.Channels)
			assert.Equal(4, stats.Seams)
			assert.Positive(stats.Cost)

			out, err = Carve(context.Background(), src, 3, Horizontal, opts)
			require.NoError(t, err)
			assert.Equal(imgWidth, out.Width)
			assert.Equal(imgHeight-3, out.Height)

			assert.True(orig.Equal(src), "the input raster must not change")
		})
	}
}

func TestCarver_ZeroSeamsReturnsACopy(t *testing.T) {
	assert := assert.New(t)

	src := randomRaster(12, 5, 4, 3)
	for _, axis := range []Axis{Vertical, Horizontal} {
		out, stats, err := CarveWithStats(context.Background(), src, 0, axis, Options{})
		assert.NoError(err)
		assert.True(src.Equal(out))
		assert.NotSame(src, out)
		assert.Zero(stats.Seams)
		assert.Zero(stats.Cost)
	}
}

func TestCarver_IterationsCompose(t *testing.T) {
	src := randomRaster(13, imgWidth, imgHeight, 4)

	for _, strategy := range []Strategy{DynamicProgramming, Greedy} {
		for _, axis := range []Axis{Vertical, Horizontal} {
			t.Run(string(strategy)+"/"+string(axis), func(t *testing.T) {
				opts := Options{Strategy: strategy}
				want, err := Carve(context.Background(), src, 5, axis, opts)
				require.NoError(t, err)

				got := src
				for i := 0; i < 5; i++ {
					got, err = Carve(context.Background(), got, 1, axis, opts)
					require.NoError(t, err)
				}
				assert.True(t, want.Equal(got))
			})
		}
	}
}

func TestCarver_KeepsTheStepEdge(t *testing.T) {
	assert := assert.New(t)

	src := stepRaster(8, 5)
	out, stats, err := CarveWithStats(context.Background(), src, 2, Vertical, Options{Strategy: DynamicProgramming})
	require.NoError(t, err)

	assert.Zero(stats.Cost)
	assert.Equal(6, out.Width)
	for y := 0; y < out.Height; y++ {
		assert.Equal([]uint8{0, 0, 0xff, 0xff, 0xff, 0xff}, out.Pix[y*6:(y+1)*6], "row %d", y)
	}
}

func TestCarver_Errors(t *testing.T) {
	ctx := context.Background()
	src := randomRaster(14, 4, 3, 4)

	testCases := []struct {
		name  string
		r     *Raster
		n     int
		axis  Axis
		strat Strategy
		kind  Kind
	}{
		{"nil raster", nil, 1, Vertical, "", DecodeFailure},
		{"broken raster", &Raster{Width: 4, Height: 3, Channels: 2}, 1, Vertical, "", DecodeFailure},
		{"negative count", src, -1, Vertical, "", InvalidParameter},
		{"all columns", src, 4, Vertical, "", InvalidParameter},
		{"all rows", src, 3, Horizontal, "", InvalidParameter},
		{"unknown axis", src, 1, "diagonal", "", InvalidParameter},
		{"unknown strategy", src, 1, Vertical, "bogus", InvalidParameter},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Carve(ctx, tc.r, tc.n, tc.axis, Options{Strategy: tc.strat})
			assert.Nil(t, out)
			assert.True(t, IsKind(err, tc.kind), "got %v", err)
		})
	}
}

func TestCarver_Cancellation(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := Carve(ctx, randomRaster(15, 6, 6, 4), 2, Vertical, Options{})
	assert.Nil(out)
	assert.True(errors.Is(err, context.Canceled))

	// Cancelling between iterations stops the carve too.
	ctx, cancel = context.WithCancel(context.Background())
	calls := 0
	_, err = Carve(ctx, randomRaster(15, 6, 6, 4), 4, Vertical, Options{
		Visualize: func(*Raster, Seam, Axis) {
			calls++
			cancel()
		},
	})
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(1, calls)
}

func TestCarver_VisualizeSeesTheInputOrientation(t *testing.T) {
	assert := assert.New(t)

	type frame struct {
		width, height, seamLen int
		axis                   Axis
	}
	var frames []frame
	visualize := func(r *Raster, s Seam, axis Axis) {
		frames = append(frames, frame{r.Width, r.Height, len(s), axis})
		for _, p := range s.Points(axis) {
			assert.True(p.In(image.Rect(0, 0, r.Width, r.Height)))
		}
	}

	src := randomRaster(16, 6, 4, 4)
	_, err := Carve(context.Background(), src, 2, Horizontal, Options{Visualize: visualize})
	require.NoError(t, err)
	assert.Equal([]frame{
		{6, 4, 6, Horizontal},
		{6, 3, 6, Horizontal},
	}, frames)

	frames = nil
	_, err = Carve(context.Background(), src, 2, Vertical, Options{Visualize: visualize})
	require.NoError(t, err)
	assert.Equal([]frame{
		{6, 4, 4, Vertical},
		{5, 4, 4, Vertical},
	}, frames)
}

func TestCarver_Blur(t *testing.T) {
	assert := assert.New(t)

	src := randomRaster(17, imgWidth, imgHeight, 3)
	out, stats, err := CarveWithStats(context.Background(), src, 3, Vertical, Options{BlurSigma: 1.5, Workers: 2})
	require.NoError(t, err)
	assert.Equal(imgWidth-3, out.Width)
	assert.Equal(3, out.Channels)
	assert.Equal(3, stats.Seams)
}

func TestCarver_LogsDiagnostics(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	src := NewRaster(4, 4, 1)
	_, stats, err := CarveWithStats(context.Background(), src, 1, Vertical, Options{Strategy: MinCut, Logger: logger})
	require.NoError(t, err)

	assert.Len(stats.Diagnostics, 4)
	assert.Contains(buf.String(), "seam search fallback")
	assert.Contains(buf.String(), "seam search took fallbacks")
	assert.Contains(buf.String(), "carve done")
}

func TestCarver_FaceProtection(t *testing.T) {
	assert := assert.New(t)

	em := uniformMap(t, 4, 6, 1)
	protectRects(em, []image.Rectangle{image.Rect(-2, -1, 2, 9)}, false, DefaultFacePenalty)

	seam := (&DPFinder{}).Find(em)
	assert.Equal(Seam{2, 2, 2, 2}, seam)
	assert.Equal(4.0, seam.Cost(em))
}

func TestCarver_FacesSurviveHorizontalCarve(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	src := faceRaster()
	require.Equal(t, faceRect.Dy(), intactFaceRows(src))

	out, err := Carve(ctx, src, 3, Horizontal, Options{})
	require.NoError(t, err)
	assert.Less(intactFaceRows(out), faceRect.Dy(), "unprotected seams go through the face")

	out, stats, err := CarveWithStats(ctx, src, 3, Horizontal, Options{Faces: newTestFaceGuard(t)})
	require.NoError(t, err)
	assert.Equal(src.Width, out.Width)
	assert.Equal(src.Height-3, out.Height)
	assert.Equal(faceRect.Dy(), intactFaceRows(out))
	assert.Less(stats.Cost, DefaultFacePenalty, "penalties are not counted in the cost")
}

func BenchmarkCarve(b *testing.B) {
	src := randomRaster(1, 96, 64, 4)
	for _, s := range Strategies {
		b.Run(string(s), func(b *testing.B) {
			opts := Options{Strategy: s}
			for i := 0; i < b.N; i++ {
				if _, err := Carve(context.Background(), src, 4, Vertical, opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
