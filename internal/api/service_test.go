package api

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)

	b, err := c.Marshal(&SignupRequest{Email: "a@x.com", Password: "pw123456"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"a@x.com","password":"pw123456"}`, string(b))

	var out SignupRequest
	require.NoError(t, c.Unmarshal(b, &out))
	assert.Equal(t, "a@x.com", out.Email)
}

func TestServiceDescMatchesMethodNames(t *testing.T) {
	all := map[string]bool{
		MethodSignup: true, MethodSignin: true, MethodRefreshToken: true, MethodChangePassword: true,
		MethodGetAccount: true, MethodListAccounts: true, MethodUpdateAccountRole: true, MethodUpdateAccountEmail: true,
	}
	require.Len(t, AuthServiceDesc.Methods, len(all))

	for _, m := range AuthServiceDesc.Methods {
		full := "/" + ServiceName + "/" + m.MethodName
		assert.True(t, all[full], full)
		assert.True(t, strings.HasPrefix(full, "/gophauth.v1.AuthService/"))
	}
}
