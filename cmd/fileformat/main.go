// Fileformat exports business records to files.
//
// Format definitions, written in YAML, describe either a delimited file with
// one line per record or a Jinja2 template rendered into one file per
// record. Records are read from a SQLite database.
//
// Usage:
//
//	# Export two parties through the "parties" format
//	fileformat export --format parties --ids 12,15
//
//	# Export every record of the format's model
//	fileformat export --format parties --all
//
//	# Check configuration and format definitions
//	fileformat validate
//
//	# List the loaded formats
//	fileformat formats list --output json
//
//	# Run scheduled jobs with hot reload, metrics and health endpoints
//	fileformat serve --config /etc/fileformat/fileformat.yaml
package main

func main() {
	Execute()
}
