// Package domain contains the core entities of the city information API:
// cities and the points of interest that belong to them. It also defines the
// errors used to report invalid entity state, independent of any storage or
// delivery mechanism.
package domain
