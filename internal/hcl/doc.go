// Package hcl provides the HCL implementation of manifest loading: file
// parsing, decoding of the map, layer and widget blocks, and conversion of
// free-form widget options from cty values to plain Go values.
package hcl
