package pathcopy

import "os"

// shouldCopy implements the incremental decision for one job.
//
// checkTimestamps is derived from the target (KeepNum == 1 && !AlwaysCopy);
// with snapshotting every eligible file goes into the fresh snapshot, so the
// check is disabled. A missing or unreadable destination always copies; an
// existing destination is recopied only when the source's modification time
// is strictly newer. Ties keep the destination as is. Stat follows symlinks
// so a link at the destination is judged by the file it points at.
func shouldCopy(srcInfo os.FileInfo, dstPath string, checkTimestamps bool) bool {
	if !checkTimestamps {
		return true
	}
	dstInfo, err := os.Stat(dstPath)
	if err != nil {
		return true
	}
	return srcInfo.ModTime().After(dstInfo.ModTime())
}
