// Package pipeline runs the table stages for a whole paper: grid building,
// cell text recognition, and optional row merging.
//
// Tables of a [Job] are processed concurrently, bounded by
// [Processor.Workers]. Each table is handled start to finish by a single
// goroutine, so no table value is shared between goroutines. A table that
// fails records its error in its [TableResult] and the others continue.
//
// Tables are named "<paper>_page_<n>_table_<k>" with k counted from 1 on
// each page. [LoadJobFile] reads a job description from YAML or JSON.
package pipeline
