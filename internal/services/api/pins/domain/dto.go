// Package domain holds DTOs for pins http and service contracts
package domain

// FromURLInput asks the service to fetch and pin remote media
type FromURLInput struct {
	URL string `json:"url" validate:"required,url" example:"https://www.youtube.com/watch?v=dQw4w9WgXcQ"`
}

// PinCIDInput asks the local node to pin content that already exists on IPFS
type PinCIDInput struct {
	CID string `json:"cid" validate:"required,cid" example:"bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"`
}

// PinResult describes a pinned file
type PinResult struct {
	CID           string `json:"cid"`
	IpfsURI       string `json:"ipfs_uri"`
	GatewayURL    string `json:"gateway_url"`
	Filename      string `json:"filename"`
	Size          int64  `json:"size"`
	AlreadyPinned bool   `json:"already_pinned"`
}

// PinCIDResult describes a local pin of existing content
type PinCIDResult struct {
	Success       bool   `json:"success"`
	CID           string `json:"cid"`
	LocallyPinned bool   `json:"locally_pinned"`
}
