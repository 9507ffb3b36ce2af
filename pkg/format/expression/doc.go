// Package expression evaluates file format field expressions.
//
// A field expression is a small expr program evaluated against one record.
// Record attributes are referenced with a "$" prefix:
//
//	$name                    attribute "name"
//	$amount * 1.21           arithmetic
//	len($lines)              number of items in a collection
//	$party.address.city      nested attribute access
//	$qty > 0 ? "Y" : "N"     comparisons and conditionals
//
// Before compilation every "$attr" is rewritten to "instance.attr"; the
// record is bound as "instance". Only the len builtin is callable.
//
// Errors are returned to the caller, which decides how to degrade. The
// exporter logs them and renders the field as an empty string.
package expression
