package binledger

import (
	"encoding/binary"
	"fmt"
)

// Wire format of the binary ledger protocol. All integers are big-endian and
// all records are fixed width, so a batch payload is exactly count * record
// size bytes.
//
// Request frame:  magic(2) op(1) count(4) payloadLen(4) payload
// Response frame: magic(2) status(1) count(4) payloadLen(4) payload
// A non-zero status carries a UTF-8 error message as the payload.

const (
	frameMagic uint16 = 0x4C42 // "LB"

	requestHeaderLen  = 11
	responseHeaderLen = 11

	maxPayloadLen = 1 << 22
)

const (
	opPing uint8 = iota + 1
	opCreateAccounts
	opCreateTransfers
	opLookupAccounts
	opLookupTransfers
)

const (
	statusOK uint8 = 0
)

const (
	accountRecordLen      = 24
	accountStateRecordLen = 64
	transferRecordLen     = 72
	createResultLen       = 8
	idLen                 = 16
)

// Create result codes reported per failed item. A response with zero results
// means the whole batch was applied.
const (
	resultExists uint32 = 1
)

// accountRecord is one account of a create batch.
// Layout: id(16) ledger(4) code(2) flags(2)
type accountRecord struct {
	ID     [16]byte
	Ledger uint32
	Code   uint16
	Flags  uint16
}

func appendAccountRecord(dst []byte, r accountRecord) []byte {
	dst = append(dst, r.ID[:]...)
	dst = binary.BigEndian.AppendUint32(dst, r.Ledger)
	dst = binary.BigEndian.AppendUint16(dst, r.Code)
	dst = binary.BigEndian.AppendUint16(dst, r.Flags)
	return dst
}

func decodeAccountRecord(src []byte) (accountRecord, error) {
	if len(src) < accountRecordLen {
		return accountRecord{}, fmt.Errorf("account record truncated: %d bytes", len(src))
	}
	var r accountRecord
	copy(r.ID[:], src[:16])
	r.Ledger = binary.BigEndian.Uint32(src[16:20])
	r.Code = binary.BigEndian.Uint16(src[20:22])
	r.Flags = binary.BigEndian.Uint16(src[22:24])
	return r, nil
}

// accountStateRecord is one account of a lookup response.
// Layout: id(16) ledger(4) code(2) flags(2) debitsPosted(8) debitsPending(8)
// creditsPosted(8) creditsPending(8) timestamp(8)
type accountStateRecord struct {
	ID             [16]byte
	Ledger         uint32
	Code           uint16
	Flags          uint16
	DebitsPosted   uint64
	DebitsPending  uint64
	CreditsPosted  uint64
	CreditsPending uint64
	Timestamp      uint64
}

func appendAccountStateRecord(dst []byte, r accountStateRecord) []byte {
	dst = append(dst, r.ID[:]...)
	dst = binary.BigEndian.AppendUint32(dst, r.Ledger)
	dst = binary.BigEndian.AppendUint16(dst, r.Code)
	dst = binary.BigEndian.AppendUint16(dst, r.Flags)
	dst = binary.BigEndian.AppendUint64(dst, r.DebitsPosted)
	dst = binary.BigEndian.AppendUint64(dst, r.DebitsPending)
	dst = binary.BigEndian.AppendUint64(dst, r.CreditsPosted)
	dst = binary.BigEndian.AppendUint64(dst, r.CreditsPending)
	dst = binary.BigEndian.AppendUint64(dst, r.Timestamp)
	return dst
}

func decodeAccountStateRecord(src []byte) (accountStateRecord, error) {
	if len(src) < accountStateRecordLen {
		return accountStateRecord{}, fmt.Errorf("account state record truncated: %d bytes", len(src))
	}
	var r accountStateRecord
	copy(r.ID[:], src[:16])
	r.Ledger = binary.BigEndian.Uint32(src[16:20])
	r.Code = binary.BigEndian.Uint16(src[20:22])
	r.Flags = binary.BigEndian.Uint16(src[22:24])
	r.DebitsPosted = binary.BigEndian.Uint64(src[24:32])
	r.DebitsPending = binary.BigEndian.Uint64(src[32:40])
	r.CreditsPosted = binary.BigEndian.Uint64(src[40:48])
	r.CreditsPending = binary.BigEndian.Uint64(src[48:56])
	r.Timestamp = binary.BigEndian.Uint64(src[56:64])
	return r, nil
}

// transferRecord is one journal entry on the wire.
// Layout: id(16) debitAccountID(16) creditAccountID(16) amount(8) ledger(4)
// code(2) flags(2) timestamp(8)
type transferRecord struct {
	ID              [16]byte
	DebitAccountID  [16]byte
	CreditAccountID [16]byte
	Amount          uint64
	Ledger          uint32
	Code            uint16
	Flags           uint16
	Timestamp       uint64
}

func appendTransferRecord(dst []byte, r transferRecord) []byte {
	dst = append(dst, r.ID[:]...)
	dst = append(dst, r.DebitAccountID[:]...)
	dst = append(dst, r.CreditAccountID[:]...)
	dst = binary.BigEndian.AppendUint64(dst, r.Amount)
	dst = binary.BigEndian.AppendUint32(dst, r.Ledger)
	dst = binary.BigEndian.AppendUint16(dst, r.Code)
	dst = binary.BigEndian.AppendUint16(dst, r.Flags)
	dst = binary.BigEndian.AppendUint64(dst, r.Timestamp)
	return dst
}

func decodeTransferRecord(src []byte) (transferRecord, error) {
	if len(src) < transferRecordLen {
		return transferRecord{}, fmt.Errorf("transfer record truncated: %d bytes", len(src))
	}
	var r transferRecord
	copy(r.ID[:], src[:16])
	copy(r.DebitAccountID[:], src[16:32])
	copy(r.CreditAccountID[:], src[32:48])
	r.Amount = binary.BigEndian.Uint64(src[48:56])
	r.Ledger = binary.BigEndian.Uint32(src[56:60])
	r.Code = binary.BigEndian.Uint16(src[60:62])
	r.Flags = binary.BigEndian.Uint16(src[62:64])
	r.Timestamp = binary.BigEndian.Uint64(src[64:72])
	return r, nil
}

// createResult reports one failed item of a create batch.
// Layout: index(4) result(4)
type createResult struct {
	Index  uint32
	Result uint32
}

func appendCreateResult(dst []byte, r createResult) []byte {
	dst = binary.BigEndian.AppendUint32(dst, r.Index)
	dst = binary.BigEndian.AppendUint32(dst, r.Result)
	return dst
}

func decodeCreateResult(src []byte) (createResult, error) {
	if len(src) < createResultLen {
		return createResult{}, fmt.Errorf("create result truncated: %d bytes", len(src))
	}
	return createResult{
		Index:  binary.BigEndian.Uint32(src[:4]),
		Result: binary.BigEndian.Uint32(src[4:8]),
	}, nil
}

func appendRequestHeader(dst []byte, op uint8, count uint32, payloadLen uint32) []byte {
	dst = binary.BigEndian.AppendUint16(dst, frameMagic)
	dst = append(dst, op)
	dst = binary.BigEndian.AppendUint32(dst, count)
	dst = binary.BigEndian.AppendUint32(dst, payloadLen)
	return dst
}

type responseHeader struct {
	Status     uint8
	Count      uint32
	PayloadLen uint32
}

func decodeResponseHeader(src []byte) (responseHeader, error) {
	if len(src) < responseHeaderLen {
		return responseHeader{}, fmt.Errorf("response header truncated: %d bytes", len(src))
	}
	if magic := binary.BigEndian.Uint16(src[:2]); magic != frameMagic {
		return responseHeader{}, fmt.Errorf("bad frame magic 0x%04X", magic)
	}
	h := responseHeader{
		Status:     src[2],
		Count:      binary.BigEndian.Uint32(src[3:7]),
		PayloadLen: binary.BigEndian.Uint32(src[7:11]),
	}
	if h.PayloadLen > maxPayloadLen {
		return responseHeader{}, fmt.Errorf("response payload too large: %d bytes", h.PayloadLen)
	}
	return h, nil
}
