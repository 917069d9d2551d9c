package domain

import (
	"sort"
	"strings"
	"time"
)

// RoomKind distinguishes the two broadcast namespaces. A group id and a
// list id that happen to share the same string are still different rooms.
type RoomKind int

const (
	GroupRoom RoomKind = iota
	ListRoom
)

func (k RoomKind) String() string {
	switch k {
	case GroupRoom:
		return "group"
	case ListRoom:
		return "list"
	default:
		return "unknown"
	}
}

// Room identifies one broadcast domain. Rooms have no storage of their
// own: a room exists exactly as long as at least one connection is a
// member of it.
type Room struct {
	Kind RoomKind
	ID   string
}

func NewGroupRoom(groupID string) Room { return Room{Kind: GroupRoom, ID: groupID} }
func NewListRoom(listID string) Room   { return Room{Kind: ListRoom, ID: listID} }

// PriceResult is one price observation for a barcode in one store,
// as returned by the external price-lookup provider.
type PriceResult struct {
	Barcode      string  `json:"barcode"`
	ItemName     string  `json:"item_name"`
	ChainName    string  `json:"chain_name"`
	StoreAddress string  `json:"store_address"`
	City         string  `json:"city"`
	Price        float64 `json:"price"`
	DistanceKm   float64 `json:"distance_km,omitempty"`
}

// PriceCacheTTL is how long a cached price lookup stays valid.
const PriceCacheTTL = 24 * time.Hour

// PriceCacheKey builds the order-independent cache key for a lookup:
// the same city with the same barcodes in any order yields the same key.
func PriceCacheKey(city string, barcodes []string) string {
	sorted := make([]string, len(barcodes))
	copy(sorted, barcodes)
	sort.Strings(sorted)
	return city + "|" + strings.Join(sorted, ",")
}

// RegistryStats is a point-in-time snapshot of registry occupancy,
// reported periodically and exposed on the debug listener.
type RegistryStats struct {
	Connections int `json:"connections"`
	GroupRooms  int `json:"group_rooms"`
	ListRooms   int `json:"list_rooms"`
}
