// Package gridfields holds build metadata for the gridfields module.
package gridfields

// Version is the current release of gridfields.
const Version = "0.1.0"

// Revision is the git revision the binary was built from. It is set at
// link time and empty in development builds.
var Revision string
