package forecast

// Navigator decides whether a coordinate is a physically valid location for
// the simulated vessel. Implementations must be pure functions of position
// so trials can evaluate them concurrently.
type Navigator interface {
	Navigable(lat, lon float64) bool
}

// Rect is an axis-aligned geographic rectangle.
type Rect struct {
	Name   string
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether the coordinate lies within the rectangle.
func (r Rect) Contains(lat, lon float64) bool {
	return lat >= r.MinLat && lat <= r.MaxLat && lon >= r.MinLon && lon <= r.MaxLon
}

// RegionNavigator approximates open water with a bounded region of interest
// minus a set of exclusion rectangles standing in for landmasses. Anything
// outside the region is not navigable: positions the model knows nothing
// about halt propagation instead of wandering freely.
type RegionNavigator struct {
	Region     Rect
	Exclusions []Rect
}

// Navigable implements Navigator.
func (n RegionNavigator) Navigable(lat, lon float64) bool {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return false
	}
	if !n.Region.Contains(lat, lon) {
		return false
	}
	for _, r := range n.Exclusions {
		if r.Contains(lat, lon) {
			return false
		}
	}
	return true
}

// NewSouthChinaSeaNavigator returns the default navigator covering the
// western Pacific with coarse landmass exclusions. The rectangles are a
// stand-in for real coastline data; swap the Navigator to use a dataset.
func NewSouthChinaSeaNavigator() RegionNavigator {
	return RegionNavigator{
		Region: Rect{Name: "western-pacific", MinLat: -5, MaxLat: 45, MinLon: 99, MaxLon: 140},
		Exclusions: []Rect{
			{Name: "mainland", MinLat: 20, MaxLat: 45, MinLon: 100, MaxLon: 123},
			{Name: "hainan", MinLat: 18, MaxLat: 20, MinLon: 108.5, MaxLon: 111},
			{Name: "vietnam", MinLat: 8, MaxLat: 23, MinLon: 102, MaxLon: 109.3},
			{Name: "philippines", MinLat: 5, MaxLat: 19, MinLon: 117, MaxLon: 127},
			{Name: "taiwan", MinLat: 21, MaxLat: 26, MinLon: 119, MaxLon: 123},
		},
	}
}

// OpenWater is a Navigator that accepts every in-range coordinate. Useful in
// tests and for forecasts far from any charted obstruction.
type OpenWater struct{}

// Navigable implements Navigator.
func (OpenWater) Navigable(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
