package bplus

import "testing"

func TestMetadataRoundTrip(t *testing.T) {
	buf := encodeMetadata("students", 12, AttrDouble, 7)
	name, offset, attrType, root := decodeMetadata(buf)
	if name != "students" {
		t.Errorf("relation name: got %q", name)
	}
	if offset != 12 {
		t.Errorf("attrByteOffset: got %d", offset)
	}
	if attrType != AttrDouble {
		t.Errorf("attrType: got %v", attrType)
	}
	if root != 7 {
		t.Errorf("rootPageNo: got %d", root)
	}
}

func TestLeafRoundTrip(t *testing.T) {
	w := widthInt32
	leaf := newLeafNode(w)
	insertLeafAt(leaf, 0, EncodeInt32(10), RID{PageNum: 1, SlotNum: 2})
	insertLeafAt(leaf, 1, EncodeInt32(20), RID{PageNum: 3, SlotNum: 4})
	leaf.rightSibling = 99

	data := encodeLeaf(leaf)
	got := decodeLeaf(data, w)

	if got.count != 2 {
		t.Fatalf("count: got %d, want 2", got.count)
	}
	if DecodeInt32(got.keys[0]) != 10 || DecodeInt32(got.keys[1]) != 20 {
		t.Errorf("keys mismatch: %v", got.keys[:2])
	}
	if !got.rids[0].Equal(RID{PageNum: 1, SlotNum: 2}) {
		t.Errorf("rid 0 mismatch: %+v", got.rids[0])
	}
	if got.rightSibling != 99 {
		t.Errorf("rightSibling: got %d, want 99", got.rightSibling)
	}
	for i := 2; i < len(got.keys); i++ {
		if !w.isSentinel(got.keys[i]) {
			t.Errorf("slot %d should be sentinel-padded", i)
		}
	}
}

func TestInternalRoundTrip(t *testing.T) {
	w := widthInt32
	node := newInternalNode(w, 1)
	node.children[0] = 5
	insertSeparatorAt(node, 0, EncodeInt32(100), 6)
	insertSeparatorAt(node, 1, EncodeInt32(200), 7)

	data := encodeInternal(node)
	got := decodeInternal(data, w)

	if got.count != 2 {
		t.Fatalf("count: got %d, want 2", got.count)
	}
	if got.level != 1 {
		t.Errorf("level: got %d, want 1", got.level)
	}
	if got.children[0] != 5 || got.children[1] != 6 || got.children[2] != 7 {
		t.Errorf("children mismatch: %v", got.children[:3])
	}
}
