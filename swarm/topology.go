package swarm

// Neighborhoods maps each particle index to the indices it can learn from.
// Built once at engine construction and read-only thereafter.
type Neighborhoods [][]int

// NewNeighborhoods builds the neighbor index sets for a swarm of n particles.
//
// For Lbest, particle i's neighborhood is the ring window of offsets
// -rho through rho-1 around i (2*rho indices, i itself included).  Indices
// wrap modulo n at both ends, so every entry lies in [0, n).
//
// For Gbest, every neighborhood is all n indices.
func NewNeighborhoods(top Topology, n, rho int) Neighborhoods {
	hoods := make(Neighborhoods, n)
	switch top {
	case Lbest:
		for i := range hoods {
			hood := make([]int, 0, 2*rho)
			for off := -rho; off < rho; off++ {
				hood = append(hood, ((i+off)%n+n)%n)
			}
			hoods[i] = hood
		}
	default: // Gbest
		all := make([]int, n)
		for j := range all {
			all[j] = j
		}
		for i := range hoods {
			hoods[i] = all
		}
	}
	return hoods
}
