package ports

// CredentialCodec turns raw usernames and passwords into their stored forms.
type CredentialCodec interface {
	Obfuscate(rawUsername string) string
	Deobfuscate(token string) (string, error)
	MakeSalt() (string, error)
	MakePasswordRecord(rawUsername, rawPassword, salt string) (string, error)
	Verify(rawUsername, rawPassword, record string) bool
}
