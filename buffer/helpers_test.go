package buffer

func seqString(seq Sequence) string {
	b := make([]byte, 0, ByteCount(seq))
	for _, span := range seq {
		b = append(b, span...)
	}
	return string(b)
}

func indexedString(seq IndexedSequence) string {
	b := make([]byte, 0, ByteCount(seq))
	for i, n := 0, seq.Len(); i < n; i++ {
		b = append(b, seq.At(i)...)
	}
	return string(b)
}

func fillSpans(seq Sequence, data string) {
	pos := 0
	for _, span := range seq {
		n := copy(span, data[pos:])
		pos += n
	}
}
