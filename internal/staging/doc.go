// Package staging finds and removes partial output files left behind when an
// export is interrupted between writing "<name>.part" and renaming it.
//
// Callers must hold the output root's export lock while cleaning so a live
// writer's partial file is never removed.
package staging
