package hashcache

import "golang.org/x/sys/unix"

type identity struct {
	Device  uint64
	Inode   uint64
	CTimeNS int64
}

func identityOf(path string) identity {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return identity{}
	}
	return identity{
		Device:  uint64(st.Dev),
		Inode:   uint64(st.Ino),
		CTimeNS: unix.TimespecToNsec(st.Ctim),
	}
}
