// Package api handles incoming HTTP requests for cities, points of interest
// and downloadable files. It validates requests, calls the repository, shapes
// responses through the mapper and translates store errors into HTTP status
// codes.
package api
