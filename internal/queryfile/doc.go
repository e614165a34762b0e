// Package queryfile reads queries written in JSON, YAML or CUE and turns
// them into JSON values ready for compilation.
//
// YAML and CUE are conveniences for humans; whatever the source format,
// the result is the same value a JSON file would have produced. CUE files
// must evaluate to concrete values.
package queryfile
