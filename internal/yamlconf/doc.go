// Package yamlconf provides the YAML implementation of manifest loading. It
// accepts the same content as the HCL format: an optional map section and
// ordered lists of layers and widgets.
package yamlconf
