package repository

import "fmt"

// Key layout. Badger iterates keys in lexicographic order, so tokens are
// keyed with zero-padded line/token indices to make a prefix scan return
// them in reading order, and audit entries embed a nanosecond timestamp
// to keep them time-ordered.
const (
	prefixDocument   = "doc:"
	prefixToken      = "tok:"
	prefixCorrection = "cor:"
	prefixAudit      = "aud:"
)

func documentKey(id string) []byte {
	return []byte(prefixDocument + id)
}

func tokenKey(documentID string, lineIndex, tokenIndex int) []byte {
	return []byte(fmt.Sprintf("%s%s:%06d:%06d", prefixToken, documentID, lineIndex, tokenIndex))
}

func tokenPrefix(documentID string) []byte {
	return []byte(prefixToken + documentID + ":")
}

func correctionKey(documentID, correctionID string) []byte {
	return []byte(prefixCorrection + documentID + ":" + correctionID)
}

func correctionPrefix(documentID string) []byte {
	return []byte(prefixCorrection + documentID + ":")
}

func auditKey(documentID string, unixNano int64, auditID string) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", prefixAudit, documentID, unixNano, auditID))
}

func auditPrefix(documentID string) []byte {
	return []byte(prefixAudit + documentID + ":")
}
