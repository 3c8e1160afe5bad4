package wire

// ProtocolVersion is a protocol version as major.minor.
type ProtocolVersion struct {
	Major uint8
	Minor uint8
}

// CurrentVersion is the protocol version this client speaks.
var CurrentVersion = ProtocolVersion{Major: 1, Minor: 0}

// ConnectRequest is sent by the client immediately after the WebSocket is
// established. The token is the opaque per-session credential issued at
// login; the server rejects the connection with a fatal Error frame if it
// does not verify.
type ConnectRequest struct {
	Version ProtocolVersion
	Token   string
	Client  string // client name/version, for server-side logging
}

// ConnectAck is the server's response to a ConnectRequest.
type ConnectAck struct {
	SessionID    string
	PingInterval uint32 // expected heartbeat interval, seconds (0 = client default)
	ServerTime   uint64 // Unix milliseconds
}

// SubscribeRequest asks for publications on one meeting-scoped channel.
type SubscribeRequest struct {
	Channel string
}

// SubscribeAck confirms a channel subscription.
type SubscribeAck struct {
	Channel string
}

// EncodeConnectRequest encodes a ConnectRequest to bytes.
func EncodeConnectRequest(cr *ConnectRequest) []byte {
	e := NewEncoder()
	e.WriteByte(cr.Version.Major)
	e.WriteByte(cr.Version.Minor)
	e.WriteString(cr.Token)
	e.WriteString(cr.Client)
	return e.Bytes()
}

// DecodeConnectRequest decodes a ConnectRequest from bytes.
func DecodeConnectRequest(data []byte) (*ConnectRequest, error) {
	d := NewDecoder(data)
	cr := &ConnectRequest{}

	major, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	minor, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	cr.Version = ProtocolVersion{Major: major, Minor: minor}

	if cr.Token, err = d.ReadString(); err != nil {
		return nil, err
	}
	if cr.Client, err = d.ReadString(); err != nil {
		return nil, err
	}
	return cr, nil
}

// EncodeConnectAck encodes a ConnectAck to bytes.
func EncodeConnectAck(ca *ConnectAck) []byte {
	e := NewEncoder()
	e.WriteString(ca.SessionID)
	e.WriteUint32(ca.PingInterval)
	e.WriteUint64(ca.ServerTime)
	return e.Bytes()
}

// DecodeConnectAck decodes a ConnectAck from bytes.
func DecodeConnectAck(data []byte) (*ConnectAck, error) {
	d := NewDecoder(data)
	ca := &ConnectAck{}
	var err error

	if ca.SessionID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ca.PingInterval, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if ca.ServerTime, err = d.ReadUint64(); err != nil {
		return nil, err
	}
	return ca, nil
}

// EncodeSubscribeRequest encodes a SubscribeRequest to bytes.
func EncodeSubscribeRequest(sr *SubscribeRequest) []byte {
	e := NewEncoder()
	e.WriteString(sr.Channel)
	return e.Bytes()
}

// DecodeSubscribeRequest decodes a SubscribeRequest from bytes.
func DecodeSubscribeRequest(data []byte) (*SubscribeRequest, error) {
	d := NewDecoder(data)
	channel, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	return &SubscribeRequest{Channel: channel}, nil
}

// EncodeSubscribeAck encodes a SubscribeAck to bytes.
func EncodeSubscribeAck(sa *SubscribeAck) []byte {
	e := NewEncoder()
	e.WriteString(sa.Channel)
	return e.Bytes()
}

// DecodeSubscribeAck decodes a SubscribeAck from bytes.
func DecodeSubscribeAck(data []byte) (*SubscribeAck, error) {
	d := NewDecoder(data)
	channel, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	return &SubscribeAck{Channel: channel}, nil
}
