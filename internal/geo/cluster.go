package geo

// DefaultClusterDistanceKm merges map markers that are within walking
// distance of each other.
const DefaultClusterDistanceKm = 0.5

// Cluster groups points by greedy single-link chaining: the first unclustered
// point seeds a cluster, and any remaining point within maxDistanceKm of ANY
// current member is pulled in, rescanning until the cluster stops growing.
// Groups are returned as indexes into the input slice, in discovery order.
//
// The result depends on input order. That is deliberate: callers feed points
// in a stable order (newest first) and get stable marker groups back, which
// matters more for a map view than optimal partitioning.
func Cluster(points []Coordinate, maxDistanceKm float64) [][]int {
	if len(points) == 0 {
		return nil
	}

	clustered := make([]bool, len(points))
	var clusters [][]int

	for seed := range points {
		if clustered[seed] {
			continue
		}
		clustered[seed] = true
		cluster := []int{seed}

		// Chain outward: a point joins if it is close to any member,
		// and each join can bring further points into range.
		for grew := true; grew; {
			grew = false
			for i := range points {
				if clustered[i] {
					continue
				}
				for _, member := range cluster {
					d := Distance(points[member].Lat, points[member].Lng, points[i].Lat, points[i].Lng)
					if d <= maxDistanceKm {
						clustered[i] = true
						cluster = append(cluster, i)
						grew = true
						break
					}
				}
			}
		}

		clusters = append(clusters, cluster)
	}

	return clusters
}

// Centroid returns the arithmetic mean of the points. Plain averaging is fine
// at cluster scale (hundreds of meters); no spherical correction is applied.
// The zero Coordinate is returned for an empty slice.
func Centroid(points []Coordinate) Coordinate {
	if len(points) == 0 {
		return Coordinate{}
	}

	var sumLat, sumLng float64
	for _, p := range points {
		sumLat += p.Lat
		sumLng += p.Lng
	}

	return Coordinate{
		Lat: sumLat / float64(len(points)),
		Lng: sumLng / float64(len(points)),
	}
}
