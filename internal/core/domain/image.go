package domain

// Image is a decoded and validated image ready for embedding.
type Image struct {
	// Path is the file the image was loaded from.
	Path string

	// Format is the decoder that recognised the file (jpeg, png, webp, bmp).
	Format string

	// Width and Height are the pixel dimensions.
	Width  int
	Height int

	// PNG is the image re-encoded as PNG, independent of the source format.
	PNG []byte
}
