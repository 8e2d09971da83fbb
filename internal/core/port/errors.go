// Package port file: internal/core/port/errors.go
package port

import "errors"

// Standard errors
var (
	ErrUnsupportedSource  = errors.New("不支持的数据库类型")
	ErrUnsupportedMode    = errors.New("不支持的连接模式")
	ErrAlreadyConnected   = errors.New("该数据库已处于连接状态")
	ErrMissingConfig      = errors.New("缺少连接配置")
	ErrNoActiveConnection = errors.New("当前没有活动的数据库连接")
	ErrConnection         = errors.New("连接数据库失败，请检查凭证")
	ErrDecryption         = errors.New("解密数据库凭证失败")
	ErrValidationRejected = errors.New("查询未通过安全校验")
	ErrExecution          = errors.New("执行查询出错")
	ErrDuplicateDatabase  = errors.New("已存在同名数据库")
	ErrDatabaseNotFound   = errors.New("未找到数据库配置")
	ErrPendingNotFound    = errors.New("未找到待保存的连接配置，请重新测试连接")
	ErrSchemaNotCached    = errors.New("未找到数据库结构缓存，请重新连接数据库")
	ErrInvalidCredential  = errors.New("数据库凭证格式无效")
	ErrGeneration         = errors.New("生成查询失败")
	ErrInvalidLogin       = errors.New("邮箱或密码错误")
	ErrPermissionDenied   = errors.New("权限不足，操作被拒绝")
	ErrInvalidToken       = errors.New("登录凭证无效或已过期")
	ErrInvalidRequest     = errors.New("请求参数无效")
)
