package model

import "strings"

type AssetType int

const (
	AssetCopy = AssetType(iota) // transferred unchanged
	AssetGIF
	AssetJPEG
	AssetPNG
	AssetSVG
)

func (t AssetType) String() string {
	switch t {
	case AssetCopy:
		return "copy"
	case AssetGIF:
		return "gif"
	case AssetJPEG:
		return "jpeg"
	case AssetPNG:
		return "png"
	case AssetSVG:
		return "svg"
	default:
		return "<invalid>"
	}
}

func AssetTypeFromFileExt(ext string) AssetType {
	switch strings.ToLower(ext) {
	case ".gif":
		return AssetGIF
	case ".jpg", ".jpeg":
		return AssetJPEG
	case ".png":
		return AssetPNG
	case ".svg":
		return AssetSVG
	}
	return AssetCopy
}
