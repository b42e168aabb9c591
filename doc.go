// Package pkgdata provides cached, process-lifetime access to resources
// bundled with a program's own distribution.
//
// Resources live in named namespaces called anchors. An anchor is any fs.FS
// (usually an embed.FS) registered once under a stable name:
//
//	//go:embed assets
//	var assets embed.FS
//
//	func init() {
//	    pkgdata.Register("myapp/assets", assets)
//	}
//
// A [Loader] wraps one anchor and exposes three access modes with different
// lifetimes:
//
//	On-filesystem | Lifetime     | Method
//	--------------+--------------+----------
//	true          | process      | Cached
//	true          | caller scope | AsPath
//	false         | n/a          | Readable
//
// Readable returns a virtual [Resource] handle for read access without
// touching the filesystem. AsPath materializes the resource as a real path
// for the duration of a caller-delimited scope; any temporary extraction is
// removed on Close. Cached materializes the resource once per process and
// returns the same path on every subsequent call; extractions are released
// by [Shutdown] (or [Registry.Close]) at process exit.
//
//	tpl, err := pkgdata.New("myapp/assets")
//	if err != nil {
//	    return err
//	}
//	path, err := tpl.Cached("templates", "report.html")
//
// Directory-backed anchors registered with [RegisterDir] materialize with
// zero copying: AsPath and Cached return the real on-disk path directly.
// Bundle anchors registered with [RegisterBundle] are backed by a
// zstd-compressed tar archive and always extract on materialization.
//
// Requesting a directory and a file beneath it as separate identities
// produces two independent cache entries; the file is not served from the
// directory's extraction. Callers that want a single copy should request
// the directory and join paths beneath the returned location themselves.
package pkgdata
