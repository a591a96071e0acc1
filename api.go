package julia

import (
	"image"
)

// ImgProvider hands out the finished bitmap of a render.
type ImgProvider interface {
	GetImage() ([]byte, error)
}

type Renderer interface {
	RenderTile(p Params, tile image.Rectangle) (Tile, error)
}
