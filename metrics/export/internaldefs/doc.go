// Package internaldefs holds the shared metric name and help-text tables used
// by the exporter packages. It exists so exposition formats agree on naming
// without duplicating the tables.
package internaldefs
