package draw

import (
	"image"
	"image/color"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	textFont     *truetype.Font
	textFontErr  error
	textFontOnce sync.Once
)

// Text draws s onto dst with the baseline starting at the given point, using
// the embedded Go Regular typeface at the given point size.
func Text(dst Image, at image.Point, size float64, s string, c color.Color) error {
	textFontOnce.Do(func() {
		textFont, textFontErr = truetype.Parse(goregular.TTF)
	})
	if textFontErr != nil {
		return textFontErr
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(textFont)
	ctx.SetFontSize(size)
	ctx.SetClip(dst.Bounds())
	ctx.SetDst(dst)
	ctx.SetSrc(image.NewUniform(c))

	_, err := ctx.DrawString(s, freetype.Pt(at.X, at.Y))
	return err
}
