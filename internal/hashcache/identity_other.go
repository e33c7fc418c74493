//go:build !linux

package hashcache

type identity struct {
	Device  uint64
	Inode   uint64
	CTimeNS int64
}

func identityOf(string) identity {
	return identity{}
}
