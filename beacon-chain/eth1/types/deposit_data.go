package types

import (
	ssz "github.com/ferranbt/fastssz"
)

// Field sizes of the DepositData container, in bytes.
const (
	pubkeyLength                = 48
	withdrawalCredentialsLength = 32
	signatureLength             = 96

	depositDataSize = pubkeyLength + withdrawalCredentialsLength + 8 + signatureLength
)

// DepositData is the signed validator deposit record submitted to the deposit
// contract. Its SSZ hash tree root is the leaf content of the deposit trie.
type DepositData struct {
	PublicKey             []byte
	WithdrawalCredentials []byte
	Amount                uint64
	Signature             []byte
}

// MarshalSSZ ssz marshals the DepositData object.
func (d *DepositData) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(d)
}

// MarshalSSZTo ssz marshals the DepositData object to a target array.
func (d *DepositData) MarshalSSZTo(buf []byte) ([]byte, error) {
	dst := buf

	// Field (0) 'PublicKey'
	if size := len(d.PublicKey); size != pubkeyLength {
		return nil, ssz.ErrBytesLength
	}
	dst = append(dst, d.PublicKey...)

	// Field (1) 'WithdrawalCredentials'
	if size := len(d.WithdrawalCredentials); size != withdrawalCredentialsLength {
		return nil, ssz.ErrBytesLength
	}
	dst = append(dst, d.WithdrawalCredentials...)

	// Field (2) 'Amount'
	dst = ssz.MarshalUint64(dst, d.Amount)

	// Field (3) 'Signature'
	if size := len(d.Signature); size != signatureLength {
		return nil, ssz.ErrBytesLength
	}
	dst = append(dst, d.Signature...)

	return dst, nil
}

// UnmarshalSSZ ssz unmarshals the DepositData object.
func (d *DepositData) UnmarshalSSZ(buf []byte) error {
	size := uint64(len(buf))
	if size != depositDataSize {
		return ssz.ErrSize
	}

	d.PublicKey = append([]byte{}, buf[0:48]...)
	d.WithdrawalCredentials = append([]byte{}, buf[48:80]...)
	d.Amount = ssz.UnmarshallUint64(buf[80:88])
	d.Signature = append([]byte{}, buf[88:184]...)

	return nil
}

// SizeSSZ returns the ssz encoded size in bytes for the DepositData object.
func (d *DepositData) SizeSSZ() int {
	return depositDataSize
}

// HashTreeRoot ssz hashes the DepositData object.
func (d *DepositData) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(d)
}

// HashTreeRootWith ssz hashes the DepositData object with a hasher.
func (d *DepositData) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()

	// Field (0) 'PublicKey'
	if size := len(d.PublicKey); size != pubkeyLength {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(d.PublicKey)

	// Field (1) 'WithdrawalCredentials'
	if size := len(d.WithdrawalCredentials); size != withdrawalCredentialsLength {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(d.WithdrawalCredentials)

	// Field (2) 'Amount'
	hh.PutUint64(d.Amount)

	// Field (3) 'Signature'
	if size := len(d.Signature); size != signatureLength {
		return ssz.ErrBytesLength
	}
	hh.PutBytes(d.Signature)

	hh.Merkleize(indx)
	return nil
}

// Copy returns a deep copy of the deposit data.
func (d *DepositData) Copy() *DepositData {
	if d == nil {
		return nil
	}
	return &DepositData{
		PublicKey:             append([]byte{}, d.PublicKey...),
		WithdrawalCredentials: append([]byte{}, d.WithdrawalCredentials...),
		Amount:                d.Amount,
		Signature:             append([]byte{}, d.Signature...),
	}
}
