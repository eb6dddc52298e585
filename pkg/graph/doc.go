// Package graph defines the mesh graph handed to a conforming mesher.
// The mesh graph is an immutable DAG with one node per entity of a processed
// fracture network: the domain, the fractures, the intersection lines and the
// junction points. A node's children are the lower-dimensional entities its
// mesh must conform to.
package graph
