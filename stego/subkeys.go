/*
NAME
  subkeys.go

AUTHOR
  vorbistego contributors

LICENSE
  Copyright (C) 2026 the vorbistego project. All Rights Reserved.
*/

package stego

import (
	"crypto/md5" //nolint:gosec // subkey derivation, not a confidentiality boundary; see DESIGN.md
	"encoding/binary"

	"github.com/covertaudio/vorbistego/cryptochan"
	"github.com/covertaudio/vorbistego/vlog"
)

// deriveSubkeys computes the per-frame hiding/synchro subkey, mirroring
// steganos_prepare_packet_keys: MD5 the post-ordering index, then encrypt
// the digest under the session's master key with the packet-layer stream
// cipher. The 16-byte result seeds both subkeys (spec.md section 4.10 step
// 3 notes the original's TODO: "currently the hiding and synchro subkeys
// are the same").
func deriveSubkeys(cc *cryptochan.Config, postOrderIndex []int) ([]byte, error) {
	if cc == nil {
		return nil, vlog.New(vlog.InvalidArgument, "stego.deriveSubkeys", "nil crypto config")
	}
	if len(postOrderIndex) == 0 {
		return nil, vlog.New(vlog.InvalidArgument, "stego.deriveSubkeys", "empty post-ordering index")
	}

	buf := make([]byte, len(postOrderIndex)*4)
	for i, v := range postOrderIndex {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}

	digest := md5.Sum(buf)

	subkey, err := cc.Handle.Encrypt(cc.MasterKey.Bytes(), nil, digest[:])
	if err != nil {
		return nil, vlog.Wrap(vlog.Internal, "stego.deriveSubkeys", err)
	}
	return subkey, nil
}
