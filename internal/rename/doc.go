// Package rename applies batch filename transforms.
//
// A batch is a list of files (see List), one Transform, a Preview that maps
// each old base name to a new one without touching disk, and an Apply that
// renames every file inside its own directory. Apply refuses the whole batch
// when any target collides, and records completed renames in a journal so
// the last batch can be undone.
package rename
