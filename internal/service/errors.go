package service

import "errors"

// 工作流错误分类，调用方通过 errors.Is 判断
var (
	// ErrDataFetch 读取候选电影或历史记录失败
	ErrDataFetch = errors.New("数据读取失败")
	// ErrPersistence 写入失败，本地状态保持不变
	ErrPersistence = errors.New("数据写入失败")
	// ErrInvalidRating 评分不在 1-5 范围内
	ErrInvalidRating = errors.New("评分必须在 1 到 5 之间")
	// ErrDuplicateFavorite 已经收藏过
	ErrDuplicateFavorite = errors.New("已经收藏过该电影")
	// ErrAuth 身份验证失败
	ErrAuth = errors.New("身份验证失败")
	// ErrCascade 注销账号过程中断，已删除的数据不会回滚
	ErrCascade = errors.New("注销账号未完成")

	ErrNotSignedIn    = errors.New("未登录")
	ErrNoCurrentMovie = errors.New("没有可展示的电影")
	ErrNotFound       = errors.New("记录不存在")
)
